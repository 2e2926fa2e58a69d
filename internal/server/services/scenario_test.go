package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCredentialLifecycle walks signup, login, identify, forgot and reset in
// order against one service instance.
func TestCredentialLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Signup(ctx, SignupInput{Email: "a@x.com", Password: "secret1"}))

	resp, err := f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	me, err := f.svc.Identify(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", me.Email)

	_, err = f.svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	ack, err := f.svc.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, common.ForgotPasswordAck, ack.Message)

	f.broker.Wait()
	notice, ok := f.notifier.last()
	require.True(t, ok, "reset token issued internally")
	r := tokenFromLink(t, notice.Link)

	f.expectTx()
	require.NoError(t, f.svc.ResetPassword(ctx, r, "newpass1"))

	_, err = f.svc.Login(ctx, "a@x.com", "secret1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "a@x.com", "newpass1")
	assert.NoError(t, err)

	require.NoError(t, f.mock.ExpectationsWereMet())
}

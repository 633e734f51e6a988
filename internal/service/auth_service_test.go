package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultantos/internal/dto"
	"consultantos/internal/repository"
	"consultantos/internal/utils"
)

func newAuthService(t *testing.T) AuthService {
	d := newTestData(t)
	return NewAuthService(repository.NewUserRepository(d.DB), "test-secret")
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	id, err := svc.Register(dto.RegisterReq{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.NotZero(t, id)

	resp, err := svc.Login(dto.LoginReq{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, id, resp.UserID)
	assert.NotEmpty(t, resp.Token)

	// Token 能解回来，userID 一致
	claims, err := utils.ParseToken("test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(dto.RegisterReq{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(dto.RegisterReq{Username: "alice", Password: "other456"})
	assert.Error(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(dto.RegisterReq{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(dto.LoginReq{Username: "alice", Password: "wrong"})
	assert.Error(t, err)

	_, err = svc.Login(dto.LoginReq{Username: "nobody", Password: "secret123"})
	assert.Error(t, err)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := utils.GenerateToken("secret-a", 1, "alice", "user")
	require.NoError(t, err)

	_, err = utils.ParseToken("secret-b", token)
	assert.Error(t, err)
}

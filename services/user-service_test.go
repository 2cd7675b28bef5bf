package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeturing/Segrd-forensics-sub000/models"
	"github.com/jeturing/Segrd-forensics-sub000/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestValidatePassword(t *testing.T) {
	svc := &UserService{BlackList: map[string]bool{"Password1!": true}}

	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Forensic7!", ""},
		{"too short", "Fx1!", "at least 8 characters"},
		{"no uppercase", "forensic7!", "uppercase letter"},
		{"no digit", "Forensics!", "one number"},
		{"no special char", "Forensic77", "special character"},
		{"blacklisted", "Password1!", "too common"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRegisterUserIgnoresRequestedRoleOnExistingTenant(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("join existing tenant", func(mt *mtest.T) {
		tenantID := primitive.NewObjectID()
		mt.AddMockResponses(
			// no user with that username yet
			mtest.CreateCursorResponse(0, "segrd.users", mtest.FirstBatch),
			// the tenant already exists
			mtest.CreateCursorResponse(1, "segrd.tenants", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: tenantID},
				{Key: "name", Value: "victim-corp"},
				{Key: "plan", Value: models.PlanPro},
			}),
			mtest.CreateSuccessResponse(),
		)

		svc := NewUserService(mt.Coll, mt.DB.Collection("tenants"), mt.DB.Collection("cases"), map[string]bool{})

		// The registration payload asks for admin; the stored user must not
		// get it. The call itself errors later on the unconfigured SMTP
		// relay, which is irrelevant here: the insert has already happened.
		_ = svc.RegisterUser(context.Background(), models.User{
			Username: "eve",
			Email:    "eve@corp.test",
			Password: "Forensic7!",
			Role:     models.RoleAdmin,
		}, "victim-corp")

		var inserted bson.Raw
		for _, ev := range mt.GetAllStartedEvents() {
			if ev.CommandName == "insert" {
				inserted = ev.Command.Lookup("documents").Array().Index(0).Value().Document()
			}
		}
		require.NotNil(t, inserted, "user insert must have been issued")
		assert.Equal(t, models.RoleInvestigator, inserted.Lookup("role").StringValue())
		assert.Equal(t, tenantID, inserted.Lookup("tenantId").ObjectID())
	})
}

func TestResetPasswordRejectsBadInput(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	svc := &UserService{BlackList: map[string]bool{}}
	ctx := context.Background()

	err := svc.ResetPassword(ctx, "token", "Forensic7!", "Different7!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not match")

	err = svc.ResetPassword(ctx, "token", "weak", "weak")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestResetPasswordRejectsForgedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-two")
	forged, err := utils.GenerateResetToken("alice")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-one")
	svc := &UserService{BlackList: map[string]bool{}}

	err = svc.ResetPassword(context.Background(), forged, "Forensic7!", "Forensic7!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired reset token")
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")

	claims := &utils.Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret-one"))
	require.NoError(t, err)

	svc := &UserService{BlackList: map[string]bool{}}
	err = svc.ResetPassword(context.Background(), expired, "Forensic7!", "Forensic7!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired reset token")
}

func TestResetPasswordStoresNewHash(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("valid token", func(mt *mtest.T) {
		mt.Setenv("JWT_SECRET", "secret-one")
		token, err := utils.GenerateResetToken("alice")
		require.NoError(mt, err)

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		svc := &UserService{UserCollection: mt.Coll, BlackList: map[string]bool{}}
		require.NoError(mt, svc.ResetPassword(context.Background(), token, "Forensic7!", "Forensic7!"))

		var update bson.Raw
		for _, ev := range mt.GetAllStartedEvents() {
			if ev.CommandName == "update" {
				update = ev.Command.Lookup("updates").Array().Index(0).Value().Document()
			}
		}
		require.NotNil(t, update)
		assert.Equal(t, "alice", update.Lookup("q", "username").StringValue())

		stored := update.Lookup("u", "$set", "password").StringValue()
		assert.NotEqual(t, "Forensic7!", stored, "password must be stored hashed")
		assert.NotEmpty(t, stored)
	})
}

func TestLoadBlackList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.txt")
	require.NoError(t, os.WriteFile(path, []byte("123456\npassword\nqwerty\n"), 0640))

	blackList, err := LoadBlackList(path)
	require.NoError(t, err)

	assert.True(t, blackList["password"])
	assert.True(t, blackList["qwerty"])
	assert.False(t, blackList["Forensic7!"])
}

func TestLoadBlackListMissingFile(t *testing.T) {
	_, err := LoadBlackList(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeturing/Segrd-forensics-sub000/logging"
	"github.com/jeturing/Segrd-forensics-sub000/models"
	"github.com/jeturing/Segrd-forensics-sub000/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	UserCollection   *mongo.Collection
	TenantCollection *mongo.Collection
	CasesCollection  *mongo.Collection
	BlackList        map[string]bool
}

func NewUserService(users, tenants, cases *mongo.Collection, blackList map[string]bool) *UserService {
	return &UserService{
		UserCollection:   users,
		TenantCollection: tenants,
		CasesCollection:  cases,
		BlackList:        blackList,
	}
}

// RegisterUser stores an inactive user and mails the verification code. When
// the tenant name is unknown a new tenant is created and the registering user
// becomes its admin.
func (s *UserService) RegisterUser(ctx context.Context, user models.User, tenantName string) error {
	var existingUser models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"username": user.Username}).Decode(&existingUser); err == nil {
		return fmt.Errorf("user with username already exists")
	}

	user.Username = html.EscapeString(user.Username)
	user.Name = html.EscapeString(user.Name)
	user.LastName = html.EscapeString(user.LastName)
	user.Email = html.EscapeString(user.Email)

	tenant, created, err := s.findOrCreateTenant(ctx, tenantName)
	if err != nil {
		return err
	}
	// Registration is unauthenticated, so the requested role is never
	// persisted: the tenant creator becomes admin, everyone joining an
	// existing tenant starts as investigator and is promoted by an admin.
	user.TenantID = tenant.ID
	if created {
		user.Role = models.RoleAdmin
	} else {
		user.Role = models.RoleInvestigator
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}
	user.Password = string(hashedPassword)

	verificationCode := utils.GenerateVerificationCode()
	user.VerificationCode = verificationCode
	user.VerificationExpiry = time.Now().Add(10 * time.Minute)
	user.IsActive = false

	if _, err := s.UserCollection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %v", err)
	}

	subject := "Your Verification Code"
	body := fmt.Sprintf("Your verification code is %s. Please enter it within 10 minutes.", verificationCode)
	if err := utils.SendEmail(user.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: Verification code sent to %s.", user.Email)
	return nil
}

func (s *UserService) findOrCreateTenant(ctx context.Context, name string) (*models.Tenant, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("tenant name is required")
	}

	var tenant models.Tenant
	err := s.TenantCollection.FindOne(ctx, bson.M{"name": name}).Decode(&tenant)
	if err == nil {
		return &tenant, false, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, fmt.Errorf("error fetching tenant: %v", err)
	}

	tenant = models.Tenant{
		ID:                 primitive.NewObjectID(),
		Name:               name,
		Plan:               models.PlanFree,
		SubscriptionStatus: "none",
		CreatedAt:          time.Now().UTC(),
	}
	if _, err := s.TenantCollection.InsertOne(ctx, tenant); err != nil {
		return nil, false, fmt.Errorf("failed to create tenant: %v", err)
	}
	return &tenant, true, nil
}

func (s *UserService) ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	hasUppercase := false
	for _, char := range password {
		if char >= 'A' && char <= 'Z' {
			hasUppercase = true
			break
		}
	}
	if !hasUppercase {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}

	hasDigit := false
	for _, char := range password {
		if char >= '0' && char <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one number")
	}

	specialChars := "!@#$%^&*.,"
	hasSpecial := false
	for _, char := range password {
		if strings.ContainsRune(specialChars, char) {
			hasSpecial = true
			break
		}
	}
	if !hasSpecial {
		return fmt.Errorf("password must contain at least one special character")
	}

	if s.BlackList[password] {
		return fmt.Errorf("password is too common. Please choose a stronger one")
	}

	return nil
}

// VerifyUser checks the emailed code and activates the account.
func (s *UserService) VerifyUser(ctx context.Context, email, code string) error {
	var user models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return fmt.Errorf("user not found")
	}
	if user.IsActive {
		return fmt.Errorf("user already verified")
	}
	if user.VerificationCode != code {
		return fmt.Errorf("invalid verification code")
	}
	if time.Now().After(user.VerificationExpiry) {
		return fmt.Errorf("verification code has expired")
	}

	_, err := s.UserCollection.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"isActive": true}, "$unset": bson.M{"verificationCode": ""}})
	if err != nil {
		return fmt.Errorf("failed to activate user: %v", err)
	}
	return nil
}

func (s *UserService) LoginUser(ctx context.Context, username, password string) (models.User, string, error) {
	var user models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return models.User{}, "", fmt.Errorf("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, "", fmt.Errorf("invalid password")
	}

	if !user.IsActive {
		return models.User{}, "", fmt.Errorf("user not active")
	}

	token, err := utils.GenerateToken(user.Username, user.TenantID.Hex(), user.Role)
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to generate token: %v", err)
	}

	return user, token, nil
}

// DeleteExpiredUnverifiedUsers purges accounts whose verification window
// passed without activation. Called periodically from main.
func (s *UserService) DeleteExpiredUnverifiedUsers(ctx context.Context) {
	filter := bson.M{
		"isActive":           false,
		"verificationExpiry": bson.M{"$lt": time.Now()},
	}

	result, err := s.UserCollection.DeleteMany(ctx, filter)
	if err != nil {
		logging.Logger.Warnf("Event ID: UNVERIFIED_PURGE_FAILED, Description: Failed to delete expired unverified users: %v", err)
		return
	}
	if result.DeletedCount > 0 {
		logging.Logger.Infof("Event ID: UNVERIFIED_PURGE, Description: Deleted %d users with expired verification codes.", result.DeletedCount)
	}
}

func (s *UserService) GetUserForCurrentSession(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return models.User{}, fmt.Errorf("user not found")
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, username, oldPassword, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return fmt.Errorf("new password and confirmation do not match")
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	var user models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return fmt.Errorf("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return fmt.Errorf("old password is incorrect")
	}

	hashedNewPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %v", err)
	}

	_, err = s.UserCollection.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"password": string(hashedNewPassword)}})
	if err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}
	return nil
}

// SendPasswordResetLink mails a reset token after verifying the email matches.
func (s *UserService) SendPasswordResetLink(ctx context.Context, username, email string) error {
	var user models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return fmt.Errorf("user not found")
	}
	if user.Email != email {
		return fmt.Errorf("email does not match")
	}

	token, err := utils.GenerateResetToken(username)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %v", err)
	}
	if err := utils.SendPasswordResetEmail(email, token); err != nil {
		return fmt.Errorf("failed to send password reset email: %v", err)
	}
	return nil
}

// ResetPassword consumes the token from the emailed reset link and stores the
// new password.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return fmt.Errorf("new password and confirmation do not match")
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		return fmt.Errorf("invalid or expired reset token")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %v", err)
	}

	result, err := s.UserCollection.UpdateOne(ctx,
		bson.M{"username": claims.Username},
		bson.M{"$set": bson.M{"password": string(hashedPassword)}})
	if err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user not found")
	}

	logging.Logger.Infof("Event ID: PASSWORD_RESET, Description: Password reset completed for user '%s'.", claims.Username)
	return nil
}

// DeleteAccount removes a user unless cases are still assigned to them.
func (s *UserService) DeleteAccount(ctx context.Context, username string) error {
	var user models.User
	if err := s.UserCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return fmt.Errorf("user not found")
	}

	count, err := s.CasesCollection.CountDocuments(ctx, bson.M{
		"tenantId": user.TenantID,
		"assignee": username,
		"status":   bson.M{"$ne": models.CaseStatusClosed},
	})
	if err != nil {
		return fmt.Errorf("failed to check assigned cases: %v", err)
	}
	if count > 0 {
		return fmt.Errorf("cannot delete account: user has open cases assigned")
	}

	result, err := s.UserCollection.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("user not found")
	}

	logging.Logger.Infof("Event ID: ACCOUNT_DELETED, Description: Account for user '%s' deleted.", username)
	return nil
}

func (s *UserService) GetTenantByID(ctx context.Context, tenantID primitive.ObjectID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.TenantCollection.FindOne(ctx, bson.M{"_id": tenantID}).Decode(&tenant); err != nil {
		return nil, fmt.Errorf("tenant not found")
	}
	return &tenant, nil
}

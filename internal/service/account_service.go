package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"mime/multipart"
	"strings"

	"bakery-api/internal/auth"
	"bakery-api/internal/mailer"
	"bakery-api/internal/models"
	"bakery-api/internal/store"
	"bakery-api/internal/uploads"
	"bakery-api/internal/util"

	"go.uber.org/zap"
)

const (
	approvalCodeLength   = 8
	approvalCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// AccountService handles registration, login and seller onboarding
type AccountService struct {
	accounts        AccountRepository
	tokens          TokenIssuer
	files           FileStorage
	mailer          mailer.Mailer
	operatorAddress string
	newCode         func() (string, error)
	logger          *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	accounts AccountRepository,
	tokens TokenIssuer,
	files FileStorage,
	m mailer.Mailer,
	operatorAddress string,
) *AccountService {
	return &AccountService{
		accounts:        accounts,
		tokens:          tokens,
		files:           files,
		mailer:          m,
		operatorAddress: operatorAddress,
		newCode:         generateApprovalCode,
		logger:          util.GetLogger(),
	}
}

// RegisterRequest represents a customer sign-up
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Message string          `json:"message"`
	User    *models.Account `json:"user"`
	Token   string          `json:"token"`
}

// SellerRequestInput represents an application for the seller role
type SellerRequestInput struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       string  `json:"phone" binding:"required"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
}

// SellerRequestResponse reports the stored request and whether the operator was notified
type SellerRequestResponse struct {
	Message          string                `json:"message"`
	Request          *models.SellerRequest `json:"request"`
	NotificationSent bool                  `json:"notificationSent"`
}

// CreateSellerRequest represents a seller sign-up with an approval code
type CreateSellerRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	ApprovalCode string `json:"approvalCode" binding:"required"`
}

// Register creates a customer account
func (s *AccountService) Register(ctx context.Context, req *RegisterRequest) (*models.Account, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Register")
	defer span.End()

	name, email := strings.TrimSpace(req.Name), normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, newError(ErrValidation, "name, email and password are required")
	}

	return s.createAccount(ctx, name, email, req.Password, models.RoleCustomer)
}

// Login verifies credentials and issues a bearer token
func (s *AccountService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Login")
	defer span.End()

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, newError(ErrValidation, "email and password are required")
	}

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	ok, err := auth.CheckPassword(account.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, newError(ErrUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.Issue(account.ID, account.Name, account.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account logged in", zap.Int64("account_id", account.ID))
	return &LoginResponse{Message: "login successful", User: account, Token: token}, nil
}

// RequestSellerRole files a seller application and emails the approval code to
// the operator. A failed email leaves the request stored.
func (s *AccountService) RequestSellerRole(ctx context.Context, in *SellerRequestInput) (*SellerRequestResponse, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.RequestSellerRole")
	defer span.End()

	name, email, phone := strings.TrimSpace(in.Name), normalizeEmail(in.Email), strings.TrimSpace(in.Phone)
	if name == "" || email == "" || phone == "" {
		return nil, newError(ErrValidation, "name, email and phone are required")
	}

	_, err := s.accounts.GetSellerRequestByEmail(ctx, email)
	if err == nil {
		return nil, newError(ErrConflict, "a seller request already exists for this email")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check seller request: %w", err)
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate approval code: %w", err)
	}

	req := &models.SellerRequest{
		Name:         name,
		Email:        email,
		Phone:        phone,
		Address:      in.Address,
		Description:  in.Description,
		ApprovalCode: code,
		Status:       models.SellerRequestPending,
	}
	if err := s.accounts.CreateSellerRequest(ctx, req); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(ErrConflict, "a seller request already exists for this email")
		}
		return nil, fmt.Errorf("failed to store seller request: %w", err)
	}
	util.SellerRequestsTotal.Inc()

	resp := &SellerRequestResponse{Request: req, NotificationSent: true, Message: "seller request received"}
	if err := s.mailer.Send(ctx, sellerRequestMessage(s.operatorAddress, req)); err != nil {
		util.NotificationFailuresTotal.WithLabelValues("seller_request").Inc()
		util.RecordError(span, err)
		s.logger.Error("Failed to notify operator of seller request",
			zap.Int64("request_id", req.ID),
			zap.String("email", req.Email),
			zap.Error(err))
		resp.NotificationSent = false
		resp.Message = "seller request received, but the operator could not be notified"
	}

	s.logger.Info("Seller request filed", zap.Int64("request_id", req.ID))
	return resp, nil
}

// CreateSellerAccount creates a seller account for an approved request
func (s *AccountService) CreateSellerAccount(ctx context.Context, req *CreateSellerRequest) (*models.Account, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.CreateSellerAccount")
	defer span.End()

	name, email, code := strings.TrimSpace(req.Name), normalizeEmail(req.Email), strings.ToUpper(strings.TrimSpace(req.ApprovalCode))
	if name == "" || email == "" || req.Password == "" || code == "" {
		return nil, newError(ErrValidation, "name, email, password and approval code are required")
	}

	sellerReq, err := s.accounts.GetSellerRequestByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrValidation, "invalid or unapproved approval code")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load seller request: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(sellerReq.ApprovalCode), []byte(code)) != 1 ||
		sellerReq.Status != models.SellerRequestApproved {
		return nil, newError(ErrValidation, "invalid or unapproved approval code")
	}

	return s.createAccount(ctx, name, email, req.Password, models.RoleSeller)
}

// UploadAvatar stores an avatar image and records it on the account
func (s *AccountService) UploadAvatar(ctx context.Context, accountID int64, file *multipart.FileHeader) (string, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.UploadAvatar")
	defer span.End()

	if file == nil {
		return "", newError(ErrBadRequest, "no file uploaded")
	}

	url, err := s.files.Save(file, uploads.AvatarsDir, "")
	if errors.Is(err, uploads.ErrUnsupportedType) {
		return "", newError(ErrBadRequest, "unsupported file type")
	}
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	if err := s.accounts.UpdateAccountAvatar(ctx, accountID, url); err != nil {
		if rmErr := s.files.Remove(url); rmErr != nil {
			s.logger.Warn("Failed to remove avatar", zap.String("url", url), zap.Error(rmErr))
		}
		if errors.Is(err, store.ErrNotFound) {
			return "", newError(ErrNotFound, "account not found")
		}
		return "", fmt.Errorf("failed to update avatar: %w", err)
	}

	s.logger.Info("Avatar updated", zap.Int64("account_id", accountID))
	return url, nil
}

func (s *AccountService) createAccount(ctx context.Context, name, email, password, role string) (*models.Account, error) {
	_, err := s.accounts.GetAccountByEmail(ctx, email)
	if err == nil {
		return nil, newError(ErrConflict, "this email is already in use")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check account: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(ErrConflict, "this email is already in use")
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("Account created", zap.Int64("account_id", account.ID), zap.String("role", role))
	return account, nil
}

func sellerRequestMessage(to string, req *models.SellerRequest) mailer.Message {
	var body strings.Builder
	fmt.Fprintf(&body, "Nova solicitação de vendedor\n\n")
	fmt.Fprintf(&body, "Nome: %s\nEmail: %s\nTelefone: %s\n", req.Name, req.Email, req.Phone)
	if req.Address != nil {
		fmt.Fprintf(&body, "Endereço: %s\n", *req.Address)
	}
	if req.Description != nil {
		fmt.Fprintf(&body, "Descrição: %s\n", *req.Description)
	}
	fmt.Fprintf(&body, "\nCódigo de aprovação: %s\n", req.ApprovalCode)

	return mailer.Message{
		To:      []string{to},
		Subject: "Solicitação de vendedor: " + req.Name,
		Body:    body.String(),
	}
}

func generateApprovalCode() (string, error) {
	max := big.NewInt(int64(len(approvalCodeAlphabet)))
	code := make([]byte, approvalCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = approvalCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

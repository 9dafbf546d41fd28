package store

import (
	"context"
	"database/sql"
	"fmt"

	"bakery-api/internal/models"
)

const accountColumns = `id, name, email, password_hash, role, avatar_url, created_at`

// CreateAccount inserts a new account
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := s.db.QueryRowxContext(ctx, query,
		account.Name, account.Email, account.PasswordHash, account.Role,
	).Scan(&account.ID, &account.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("account %s: %w", account.Email, ErrDuplicate)
	}
	return err
}

// GetAccountByEmail retrieves an account by email
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := s.db.GetContext(ctx, &account,
		"SELECT "+accountColumns+" FROM accounts WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountByID retrieves an account by ID
func (s *Store) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	err := s.db.GetContext(ctx, &account,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateAccountAvatar records the avatar reference of an account
func (s *Store) UpdateAccountAvatar(ctx context.Context, id int64, avatarURL string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET avatar_url = $1 WHERE id = $2", avatarURL, id)
	if err != nil {
		return err
	}
	return expectRow(result, "account", id)
}

// CreateSellerRequest inserts a new seller request
func (s *Store) CreateSellerRequest(ctx context.Context, req *models.SellerRequest) error {
	query := `
		INSERT INTO seller_requests (name, email, phone, address, description, approval_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := s.db.QueryRowxContext(ctx, query,
		req.Name, req.Email, req.Phone, req.Address, req.Description, req.ApprovalCode, req.Status,
	).Scan(&req.ID, &req.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("seller request %s: %w", req.Email, ErrDuplicate)
	}
	return err
}

// GetSellerRequestByEmail retrieves the seller request filed for an email
func (s *Store) GetSellerRequestByEmail(ctx context.Context, email string) (*models.SellerRequest, error) {
	var req models.SellerRequest
	err := s.db.GetContext(ctx, &req, `
		SELECT id, name, email, phone, address, description, approval_code, status, created_at
		FROM seller_requests WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("seller request %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

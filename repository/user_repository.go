package repository

import (
	"database/sql"
	"go-auth-api/model"
)

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	CreateUser(user *model.User) error
	GetUserByID(userID int) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByRole(role model.Role) (*model.User, error)
	GetAllUsers() ([]*model.User, error)
	UpdateUserRole(userID int, newRole string) error
	SetUserDisabled(userID int, disabled bool) error
	DeleteUser(userID int) error
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) CreateUser(user *model.User) error {
	query := `INSERT INTO users (first_name, last_name, email, password, role, disabled) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	return r.DB.QueryRow(query, user.FirstName, user.LastName, user.Email, user.Password, string(user.Role), user.Disabled).Scan(&user.ID, &user.CreatedAt)
}

func (r *UserRepository) GetUserByID(userID int) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, first_name, last_name, email, password, role, disabled, created_at FROM users WHERE id=$1`
	err := r.DB.QueryRow(query, userID).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Password, &user.Role, &user.Disabled, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, first_name, last_name, email, password, role, disabled, created_at FROM users WHERE email=$1`
	err := r.DB.QueryRow(query, email).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Password, &user.Role, &user.Disabled, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByRole returns any one user carrying the role. Used by the
// startup bootstrap to detect whether an admin account exists.
func (r *UserRepository) GetUserByRole(role model.Role) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, first_name, last_name, email, password, role, disabled, created_at FROM users WHERE role=$1 LIMIT 1`
	err := r.DB.QueryRow(query, string(role)).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Password, &user.Role, &user.Disabled, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetAllUsers() ([]*model.User, error) {
	query := `SELECT id, first_name, last_name, email, role, disabled, created_at FROM users ORDER BY id`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Role, &user.Disabled, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateUserRole(userID int, newRole string) error {
	query := `UPDATE users SET role = $1 WHERE id = $2`
	_, err := r.DB.Exec(query, newRole, userID)
	return err
}

func (r *UserRepository) SetUserDisabled(userID int, disabled bool) error {
	query := `UPDATE users SET disabled = $1 WHERE id = $2`
	_, err := r.DB.Exec(query, disabled, userID)
	return err
}

func (r *UserRepository) DeleteUser(userID int) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := r.DB.Exec(query, userID)
	return err
}

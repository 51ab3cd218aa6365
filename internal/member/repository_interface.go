package member

import "context"

type Repository interface {
	GetByUserID(ctx context.Context, userID int) (*Member, error)
	GetByID(ctx context.Context, id int) (*Member, error)
	GetStaffByUserID(ctx context.Context, userID int) (*Staff, error)
}

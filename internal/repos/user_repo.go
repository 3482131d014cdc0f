package repos

import (
	"context"

	"petcare/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ db sqlx.ExtContext }

func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) WithTx(tx *sqlx.Tx) *UserRepo { return &UserRepo{db: tx} }

const userCols = `id,business_id,email,name,phone,password_hash,role`

func (r *UserRepo) CreateBusiness(ctx context.Context, b domain.Business) error {
	_, err := exec(ctx, r.db, `INSERT INTO businesses(id,name,kind,created_at) VALUES(?,?,?,?)`,
		b.ID, b.Name, b.Kind, b.CreatedAt)
	return err
}

func (r *UserRepo) Business(ctx context.Context, id string) (*domain.Business, error) {
	var b domain.Business
	if err := get(ctx, r.db, &b, `SELECT id,name,kind,created_at FROM businesses WHERE id=?`, id); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) error {
	_, err := exec(ctx, r.db, `
		INSERT INTO users(id,business_id,email,name,phone,password_hash,role,created_at)
		VALUES(?,?,?,?,?,?,?,?)`,
		u.ID, u.BusinessID, u.Email, u.Name, u.Phone, u.Hash, u.Role, stamp())
	return err
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := get(ctx, r.db, &u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var u domain.User
	err := get(ctx, r.db, &u, `SELECT `+userCols+` FROM users WHERE phone=?`, phone)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := get(ctx, r.db, &u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) BindSession(ctx context.Context, sid, userID string) error {
	ts := stamp()
	_, err := exec(ctx, r.db, `INSERT INTO sessions(id,user_id,created_at,last_seen)
                          VALUES(?,?,?,?)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=excluded.last_seen`,
		sid, userID, ts, ts)
	return err
}

func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	var u domain.User
	err := get(ctx, r.db, &u, `
      SELECT u.id,u.business_id,u.email,u.name,u.phone,u.password_hash,u.role
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := exec(ctx, r.db, `UPDATE sessions SET user_id=NULL,last_seen=? WHERE id=?`, stamp(), sid)
	return err
}

// DeleteSessions drops every session of the given users.
func (r *UserRepo) DeleteSessions(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM sessions WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return err
	}
	_, err = exec(ctx, r.db, query, args...)
	return err
}

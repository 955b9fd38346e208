package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Querier 工作单元句柄，*sqlx.DB 与 *sqlx.Tx 都满足该接口。
// 仓储不持有连接，所有操作都在调用方传入的 Querier 上执行，由调用方决定何时提交。
type Querier = sqlx.ExtContext

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")

	// ErrUniqueViolation 唯一约束冲突（由数据库约束抛出，而不是预先查询）
	ErrUniqueViolation = errors.New("unique constraint violated")
)

// UniqueViolationError 唯一约束冲突，Field 为冲突的列（username / email），无法判断时为空
type UniqueViolationError struct {
	Field string
	Err   error
}

func (e *UniqueViolationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("unique constraint violated: %v", e.Err)
	}
	return fmt.Sprintf("unique constraint violated on %s: %v", e.Field, e.Err)
}

func (e *UniqueViolationError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrUniqueViolation) 成立
func (e *UniqueViolationError) Is(target error) bool { return target == ErrUniqueViolation }

// uniqueViolation 判断驱动错误是否为唯一约束冲突，是则返回约束描述
func uniqueViolation(err error) (string, bool) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// 1062: Duplicate entry 'x' for key 'users.username'
		return myErr.Message, myErr.Number == 1062
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 23505: unique_violation, 约束名如 users_username_key
		return pqErr.Constraint + " " + pqErr.Message, pqErr.Code == "23505"
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return sqliteErr.Error(), code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return "", false
}

// wrapUnique 把唯一约束冲突转换为 *UniqueViolationError，其余错误原样返回
func wrapUnique(err error, fields ...string) error {
	detail, ok := uniqueViolation(err)
	if !ok {
		return err
	}

	violation := &UniqueViolationError{Err: err}
	for _, field := range fields {
		if strings.Contains(detail, field) {
			violation.Field = field
			break
		}
	}
	return violation
}

package store

import (
	"context"
	"database/sql"

	"github.com/dongwook32/web-hub/types"
)

// BoardRepository handles persistence for board categories.
type BoardRepository struct {
	db *sql.DB
}

func NewBoardRepository(db *sql.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) List(ctx context.Context) ([]types.Board, error) {
	const query = `SELECT id, name, COALESCE(description, '') FROM boards ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	boards := make([]types.Board, 0)
	for rows.Next() {
		var board types.Board
		if err := rows.Scan(&board.ID, &board.Name, &board.Description); err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	return boards, rows.Err()
}

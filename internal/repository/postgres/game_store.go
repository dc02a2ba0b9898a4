package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/scorekeeper-service/internal/model"
	"github.com/maxviazov/scorekeeper-service/internal/repository"
)

// Games live in one row with both teams as JSONB; the play log is a child
// table ordered by its serial key, so appends never rewrite the game row.
type gameRepository struct {
	pool *pgxpool.Pool
	tx   repository.TxManager
}

func NewGameRepository(pool *pgxpool.Pool) repository.GameRepository {
	return &gameRepository{pool: pool, tx: NewTxManager(pool)}
}

const gameColumns = `id, sport, rules, status, current_period, period_length, total_periods,
	game_clock_seconds, is_clock_running, possession, home_team, away_team, created_at`

var playColumns = []string{"id", "game_id", "ts", "period", "game_time", "player_id", "player_name", "team_id", "type", "description"}

func (r *gameRepository) Create(ctx context.Context, g model.Game) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		exec := getQ(ctx, r.pool)
		_, err := exec.Exec(ctx,
			`INSERT INTO games (`+gameColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			g.ID, g.Sport, g.Rules, g.Status, g.CurrentPeriod, g.PeriodLength, g.TotalPeriods,
			g.GameClockSeconds, g.IsClockRunning, g.Possession, g.HomeTeam, g.AwayTeam, g.CreatedAt,
		)
		if err != nil {
			return repository.MapPgError(err)
		}
		return insertPlays(ctx, exec, g.ID, g.Plays)
	})
	if err != nil {
		return model.Game{}, err
	}
	out := g.Clone()
	if out.Plays == nil {
		out.Plays = []model.Play{}
	}
	return out, nil
}

func (r *gameRepository) GetByID(ctx context.Context, id string) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	return r.load(ctx, getQ(ctx, r.pool), id, false)
}

func (r *gameRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Game], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Game]{}, err
	}
	p = p.Sanitize()
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+gameColumns+`, COUNT(*) OVER() AS total
		 FROM games
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		p.Limit, p.Offset,
	)
	if err != nil {
		return repository.PageResult[model.Game]{}, repository.MapPgError(err)
	}
	res := repository.PageResult[model.Game]{Items: make([]model.Game, 0, p.Limit)}
	for rows.Next() {
		var it model.Game
		var total int
		if err := rows.Scan(gameDest(&it, &total)...); err != nil {
			rows.Close()
			return repository.PageResult[model.Game]{}, repository.MapPgError(err)
		}
		it.Plays = []model.Play{}
		res.Items = append(res.Items, it)
		res.Total = total
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.Game]{}, repository.MapPgError(err)
	}
	if len(res.Items) == 0 {
		// OFFSET past the end hides the window total; count separately
		if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM games`).Scan(&res.Total); err != nil {
			return repository.PageResult[model.Game]{}, repository.MapPgError(err)
		}
		return res, nil
	}

	ids := make([]string, len(res.Items))
	byID := make(map[string]int, len(res.Items))
	for i, g := range res.Items {
		ids[i] = g.ID
		byID[g.ID] = i
	}
	prow, err := exec.Query(ctx,
		`SELECT game_id, id, ts, period, game_time, player_id, player_name, team_id, type, description
		 FROM plays WHERE game_id = ANY($1) ORDER BY seq`, ids)
	if err != nil {
		return repository.PageResult[model.Game]{}, repository.MapPgError(err)
	}
	defer prow.Close()
	for prow.Next() {
		var gameID string
		var pl model.Play
		if err := prow.Scan(append([]any{&gameID}, playDest(&pl)...)...); err != nil {
			return repository.PageResult[model.Game]{}, repository.MapPgError(err)
		}
		i := byID[gameID]
		res.Items[i].Plays = append(res.Items[i].Plays, pl)
	}
	if err := prow.Err(); err != nil {
		return repository.PageResult[model.Game]{}, repository.MapPgError(err)
	}
	return res, nil
}

func (r *gameRepository) Save(ctx context.Context, g model.Game) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		exec := getQ(ctx, r.pool)
		stored, err := lockPlays(ctx, exec, g.ID)
		if err != nil {
			return err
		}
		return writeGame(ctx, exec, g, stored)
	})
}

func (r *gameRepository) Update(ctx context.Context, id string, p model.GamePatch) (model.Game, error) {
	return r.mutate(ctx, id, func(g model.Game) (model.Game, error) {
		return p.Apply(g), nil
	})
}

func (r *gameRepository) Delete(ctx context.Context, id string) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	tag, err := getQ(ctx, r.pool).Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *gameRepository) AppendPlay(ctx context.Context, id string, play model.Play) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	var out model.Game
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		exec := getQ(ctx, r.pool)
		if _, err := lockPlays(ctx, exec, id); err != nil {
			return err
		}
		_, err := exec.Exec(ctx,
			`INSERT INTO plays (id, game_id, ts, period, game_time, player_id, player_name, team_id, type, description)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			playRow(id, play)...,
		)
		if err != nil {
			return repository.MapPgError(err)
		}
		if _, err := exec.Exec(ctx, `UPDATE games SET updated_at = now() WHERE id = $1`, id); err != nil {
			return repository.MapPgError(err)
		}
		out, err = r.load(ctx, exec, id, false)
		return err
	})
	if err != nil {
		return model.Game{}, err
	}
	return out, nil
}

func (r *gameRepository) UpdateTeam(ctx context.Context, id string, side model.Side, p model.TeamPatch) (model.Game, error) {
	if !side.Valid() {
		return model.Game{}, repository.ErrNotFound
	}
	return r.mutate(ctx, id, func(g model.Game) (model.Game, error) {
		t := g.Team(side)
		*t = p.Apply(*t)
		return g, nil
	})
}

func (r *gameRepository) UpdatePlayer(ctx context.Context, id string, side model.Side, playerID string, p model.PlayerPatch) (model.Game, error) {
	if !side.Valid() {
		return model.Game{}, repository.ErrNotFound
	}
	return r.mutate(ctx, id, func(g model.Game) (model.Game, error) {
		t := g.Team(side)
		idx := t.PlayerIndex(playerID)
		if idx < 0 {
			return g, repository.ErrNotFound
		}
		t.Players[idx] = p.Apply(t.Players[idx])
		return g, nil
	})
}

// mutate is read-merge-write under a row lock.
func (r *gameRepository) mutate(ctx context.Context, id string, fn func(model.Game) (model.Game, error)) (model.Game, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Game{}, err
	}
	var out model.Game
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		exec := getQ(ctx, r.pool)
		cur, err := r.load(ctx, exec, id, true)
		if err != nil {
			return err
		}
		next, err := fn(cur.Clone())
		if err != nil {
			return err
		}
		stored := make([]string, len(cur.Plays))
		for i, p := range cur.Plays {
			stored[i] = p.ID
		}
		if err := writeGame(ctx, exec, next, stored); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return model.Game{}, err
	}
	return out, nil
}

func (r *gameRepository) load(ctx context.Context, exec q, id string, forUpdate bool) (model.Game, error) {
	sql := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	var g model.Game
	if err := exec.QueryRow(ctx, sql, id).Scan(gameDest(&g, nil)...); err != nil {
		return model.Game{}, repository.MapPgError(err)
	}
	rows, err := exec.Query(ctx,
		`SELECT id, ts, period, game_time, player_id, player_name, team_id, type, description
		 FROM plays WHERE game_id = $1 ORDER BY seq`, id)
	if err != nil {
		return model.Game{}, repository.MapPgError(err)
	}
	plays, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Play, error) {
		var p model.Play
		err := row.Scan(playDest(&p)...)
		return p, err
	})
	if err != nil {
		return model.Game{}, repository.MapPgError(err)
	}
	if plays == nil {
		plays = []model.Play{}
	}
	g.Plays = plays
	return g, nil
}

// lockPlays locks the game row and returns the stored play ids in log order.
func lockPlays(ctx context.Context, exec q, id string) ([]string, error) {
	var locked string
	if err := exec.QueryRow(ctx, `SELECT id FROM games WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
		return nil, repository.MapPgError(err)
	}
	rows, err := exec.Query(ctx, `SELECT id FROM plays WHERE game_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return ids, nil
}

// writeGame stores g over the locked row. When the stored log is a prefix of
// g.Plays only the tail is inserted; otherwise the log is rewritten.
func writeGame(ctx context.Context, exec q, g model.Game, stored []string) error {
	_, err := exec.Exec(ctx,
		`UPDATE games SET
			status = $2, current_period = $3, period_length = $4, total_periods = $5,
			game_clock_seconds = $6, is_clock_running = $7, possession = $8,
			home_team = $9, away_team = $10, updated_at = now()
		 WHERE id = $1`,
		g.ID, g.Status, g.CurrentPeriod, g.PeriodLength, g.TotalPeriods,
		g.GameClockSeconds, g.IsClockRunning, g.Possession, g.HomeTeam, g.AwayTeam,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	if isPrefix(stored, g.Plays) {
		return insertPlays(ctx, exec, g.ID, g.Plays[len(stored):])
	}
	if _, err := exec.Exec(ctx, `DELETE FROM plays WHERE game_id = $1`, g.ID); err != nil {
		return repository.MapPgError(err)
	}
	return insertPlays(ctx, exec, g.ID, g.Plays)
}

func isPrefix(stored []string, plays []model.Play) bool {
	if len(stored) > len(plays) {
		return false
	}
	for i, id := range stored {
		if plays[i].ID != id {
			return false
		}
	}
	return true
}

// insertPlays bulk-loads plays with COPY; serial keys follow input order.
func insertPlays(ctx context.Context, exec q, gameID string, plays []model.Play) error {
	if len(plays) == 0 {
		return nil
	}
	_, err := exec.CopyFrom(ctx, pgx.Identifier{"plays"}, playColumns,
		pgx.CopyFromSlice(len(plays), func(i int) ([]any, error) {
			return playRow(gameID, plays[i]), nil
		}),
	)
	return repository.MapPgError(err)
}

func playRow(gameID string, p model.Play) []any {
	return []any{p.ID, gameID, p.Timestamp, p.Period, p.GameTime, p.PlayerID, p.PlayerName, p.TeamID, string(p.Type), p.Description}
}

func playDest(p *model.Play) []any {
	return []any{&p.ID, &p.Timestamp, &p.Period, &p.GameTime, &p.PlayerID, &p.PlayerName, &p.TeamID, &p.Type, &p.Description}
}

func gameDest(g *model.Game, total *int) []any {
	dest := []any{&g.ID, &g.Sport, &g.Rules, &g.Status, &g.CurrentPeriod, &g.PeriodLength, &g.TotalPeriods,
		&g.GameClockSeconds, &g.IsClockRunning, &g.Possession, &g.HomeTeam, &g.AwayTeam, &g.CreatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	return dest
}

var _ repository.GameRepository = (*gameRepository)(nil)

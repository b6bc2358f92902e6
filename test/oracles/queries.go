package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_decided_attribution",
			SQL: `SELECT id FROM changes
                  WHERE status <> 'pending' AND (decided_by IS NULL OR decided_at IS NULL)`,
		},
		{
			Name: "O2_pending_undecided",
			SQL: `SELECT id FROM changes
                  WHERE status = 'pending' AND (decided_by IS NOT NULL OR decided_at IS NOT NULL)`,
		},
		{
			Name: "O3_translation_provenance",
			SQL: `SELECT d.id FROM dialogues d
                  WHERE d.translator_id IS NOT NULL
                    AND NOT EXISTS (
                        SELECT 1 FROM changes c
                        WHERE c.dialogue_id = d.id
                          AND c.status = 'approved'
                          AND c.new_trans = d.trans
                          AND c.proposer_id = d.translator_id)`,
		},
		{
			Name: "O4_ledger_task_scoped",
			SQL: `SELECT c.id FROM changes c
                  JOIN dialogues d ON d.id = c.dialogue_id
                  WHERE d.task_id <> c.task_id`,
		},
		{
			Name: "O5_no_empty_proposals",
			SQL:  `SELECT id FROM changes WHERE btrim(new_trans) = ''`,
		},
		{
			Name: "O6_redecide_guard_present",
			SQL: `SELECT 'missing_changes_no_rewrite_trigger' AS detail
                  WHERE NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname='changes_no_rewrite')`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and sample row text) or empty name if all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		has := rows.Next()
		if has {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}

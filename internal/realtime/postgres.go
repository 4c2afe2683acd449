package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
)

// NotifyChannel is the Postgres channel the change triggers notify on.
const NotifyChannel = "table_changes"

const notifyFunction = `
CREATE OR REPLACE FUNCTION notify_table_change() RETURNS trigger AS $$
DECLARE
	payload json;
BEGIN
	IF TG_OP = 'DELETE' THEN
		payload := json_build_object(
			'table', TG_TABLE_NAME,
			'type', TG_OP,
			'old_record', json_build_object('id', OLD.id),
			'commit_timestamp', now());
	ELSE
		payload := json_build_object(
			'table', TG_TABLE_NAME,
			'type', TG_OP,
			'record', row_to_json(NEW),
			'commit_timestamp', now());
	END IF;
	PERFORM pg_notify('` + NotifyChannel + `', payload::text);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql;`

// TriggerStatements returns the DDL that makes every listed table emit
// change notifications. Statements are idempotent.
func TriggerStatements(tables ...string) []string {
	stmts := []string{notifyFunction}
	for _, t := range tables {
		stmts = append(stmts,
			fmt.Sprintf(`DROP TRIGGER IF EXISTS %s_changes ON %s`, t, t),
			fmt.Sprintf(
				`CREATE TRIGGER %s_changes AFTER INSERT OR UPDATE OR DELETE ON %s FOR EACH ROW EXECUTE FUNCTION notify_table_change()`,
				t, t,
			),
		)
	}
	return stmts
}

// PgListener holds one LISTEN connection and relays notifications into a
// Broker. It reconnects after RetryDelay when the connection drops.
type PgListener struct {
	DSN        string
	Broker     *Broker
	Log        *logger.Logger
	RetryDelay time.Duration
	// Heartbeat bounds each wait; an idle period this long is reported as
	// ErrTimedOut.
	Heartbeat time.Duration
}

func (l *PgListener) Run(ctx context.Context) {
	log := l.Log.Named("pg_listener")

	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}

		log.Error().Err(err).Msg("listen connection lost")
		l.Broker.Fail(fmt.Errorf("%w: %v", ErrChannel, err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.RetryDelay):
		}
	}
}

func (l *PgListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.DSN)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	l.Log.Info().Str("channel", NotifyChannel).Msg("listening for table changes")

	for {
		waitCtx, cancel := context.WithTimeout(ctx, l.Heartbeat)
		n, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				l.Broker.Fail(ErrTimedOut)
				// a timed out wait leaves the connection usable only after a ping
				if err := conn.Ping(ctx); err != nil {
					return fmt.Errorf("ping: %w", err)
				}
				continue
			}
			return fmt.Errorf("wait: %w", err)
		}

		var ev Event
		if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
			l.Log.Warn().Err(err).Msg("discarding malformed notification")
			continue
		}
		_ = l.Broker.Publish(ctx, ev)
	}
}

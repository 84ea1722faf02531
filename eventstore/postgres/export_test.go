package postgres

import "context"

func (s *EventStore) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "TRUNCATE events")
	return err
}

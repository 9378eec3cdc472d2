//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"onboard/pkg/testutil/containers"
)

type PostgresUserStoreSuite struct {
	UserStoreSuite
	postgres *containers.PostgresContainer
}

func TestPostgresUserStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresUserStoreSuite))
}

func (s *PostgresUserStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *PostgresUserStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "users"))
	s.store = NewPostgres(s.postgres.DB)
}

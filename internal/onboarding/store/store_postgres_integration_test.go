//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"onboard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	StoreContractSuite
	postgres *containers.PostgresContainer
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "onboarding_applications"))
	s.resetContract(NewPostgres(s.postgres.DB))
}

func (s *PostgresStoreSuite) TestDocumentsColumnIsAnArray() {
	app := s.newApplication(s.base)
	app.Documents = nil
	s.Require().NoError(s.store.Create(s.ctx, app))

	var kind string
	s.Require().NoError(s.postgres.DB.QueryRowContext(s.ctx,
		`SELECT jsonb_typeof(documents) FROM onboarding_applications WHERE user_id = $1`,
		app.UserID.String(),
	).Scan(&kind))
	s.Equal("array", kind)
}

package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "onboard/pkg/domain"
	"onboard/pkg/requestcontext"
)

type PublisherSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

// Emit fills request metadata from the context so callers only describe the action.
func (s *PublisherSuite) TestEmitEnrichesFromContext() {
	pinned := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), pinned)
	ctx = requestcontext.WithRequestID(ctx, "req-42")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.99",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	pub := NewPublisher(s.store)
	s.Require().NoError(pub.Emit(ctx, Event{
		ActorID: id.NewUserID(),
		Subject: "app-1",
		Action:  ActionApplicationApproved,
	}))

	events, err := pub.ListBySubject(ctx, "app-1")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(pinned, events[0].Timestamp)
	s.Equal("req-42", events[0].RequestID)
	s.Equal("203.0.113.0", events[0].IPPrefix)
	s.Contains(events[0].Client, "Chrome 120")
}

func (s *PublisherSuite) TestExplicitFieldsWin() {
	pub := NewPublisher(s.store)
	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	s.Require().NoError(pub.Emit(context.Background(), Event{Subject: "app-2", Action: ActionApplicationSubmitted, Timestamp: ts, Client: "cli"}))

	events, _ := pub.ListBySubject(context.Background(), "app-2")
	s.Equal(ts, events[0].Timestamp)
	s.Equal("cli", events[0].Client)
	s.Empty(events[0].IPPrefix)
}

func (s *PublisherSuite) TestAsyncDrainsOnClose() {
	pub := NewPublisher(s.store, WithAsyncBuffer(8), WithPublisherLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	for range 5 {
		s.Require().NoError(pub.Emit(context.Background(), Event{Subject: "app-3", Action: ActionApplicationSubmitted}))
	}
	pub.Close()

	events, _ := s.store.ListBySubject(context.Background(), "app-3")
	s.Len(events, 5)
}

func (s *PublisherSuite) TestDescribeClient() {
	s.Empty(DescribeClient(""))
	s.Equal("bot", DescribeClient("Googlebot/2.1 (+http://www.google.com/bot.html)"))
}

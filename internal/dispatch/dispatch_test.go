package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecr-group/leadqual-cli/internal/model"
)

var dispatchLeads = []model.QualifiedLead{
	{Email: "a@ing.com", FirstName: "Ann", LastName: "Aa", Position: "CFO", Company: "ING", Domain: "ing.com"},
	{Email: "b@ing.com", FirstName: "Ben", LastName: "Bb", Position: "Controller", Company: "ING", Domain: "ing.com"},
	{Email: "c@ing.com", FirstName: "Cat", LastName: "Cc", Position: "Treasurer", Company: "ING", Domain: "ing.com"},
}

var dispatchMessages = map[string]string{
	"a@ing.com": "Hi Ann",
	"b@ing.com": "Hi Ben",
	"c@ing.com": "Hi Cat",
}

// failSecondSink fails exactly the second payload it sees.
type failSecondSink struct {
	sent []Payload
}

func (s *failSecondSink) Send(_ context.Context, p Payload) error {
	s.sent = append(s.sent, p)
	if len(s.sent) == 2 {
		return eris.New("connection reset")
	}
	return nil
}

func TestRunIsolatesPerLeadFailures(t *testing.T) {
	sink := &failSecondSink{}
	report := Run(context.Background(), sink, dispatchLeads, dispatchMessages, nil)

	// Second lead fails, first and third are still attempted and reported.
	assert.Equal(t, "2/3", report.Summary())
	require.Len(t, report.Results, 3)
	assert.True(t, report.Results[0].Sent)
	assert.False(t, report.Results[1].Sent)
	assert.Contains(t, report.Results[1].Detail, "connection reset")
	assert.True(t, report.Results[2].Sent)

	// Strict input order, one payload per lead.
	require.Len(t, sink.sent, 3)
	assert.Equal(t, "a@ing.com", sink.sent[0].Email)
	assert.Equal(t, "Hi Cat", sink.sent[2].Message)
}

func TestWebhookSink(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL)
	err := sink.Send(context.Background(), BuildPayload(dispatchLeads[0], "Hi Ann"))
	require.NoError(t, err)

	assert.Equal(t, "Ann", got.FirstName)
	assert.Equal(t, "a@ing.com", got.Email)
	assert.Equal(t, "CFO", got.JobTitle)
	assert.Equal(t, "Hi Ann", got.Message)
	assert.Equal(t, "ing.com", got.Domain)
}

func TestWebhookSinkNon200IsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted) // 202 is not accepted, only 200
	}))
	defer srv.Close()

	err := NewWebhookSink(srv.URL).Send(context.Background(), Payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 202")
}

func TestRunAgainstWebhook(t *testing.T) {
	var count int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count++
		if count == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	report := Run(context.Background(), NewWebhookSink(srv.URL), dispatchLeads, dispatchMessages, nil)
	assert.Equal(t, 3, count)
	assert.Equal(t, "2/3", report.Summary())
}

type sfRecorder struct {
	records []map[string]any
}

func (f *sfRecorder) InsertOne(_ context.Context, sObjectName string, record map[string]any) (string, error) {
	f.records = append(f.records, record)
	return "00Q1", nil
}

func TestSalesforceSinkMapsFields(t *testing.T) {
	rec := &sfRecorder{}
	sink := &SalesforceSink{Client: rec}

	err := sink.Send(context.Background(), BuildPayload(dispatchLeads[0], "Hi Ann"))
	require.NoError(t, err)
	require.Len(t, rec.records, 1)

	r := rec.records[0]
	assert.Equal(t, "Ann", r["FirstName"])
	assert.Equal(t, "Aa", r["LastName"])
	assert.Equal(t, "ING", r["Company"])
	assert.Equal(t, "CFO", r["Title"])
	assert.Equal(t, "Hi Ann", r["Description"])
}

func TestSalesforceSinkDefaultsMissingRequiredFields(t *testing.T) {
	rec := &sfRecorder{}
	sink := &SalesforceSink{Client: rec}

	err := sink.Send(context.Background(), Payload{Email: "x@acme.com", Domain: "acme.com"})
	require.NoError(t, err)
	assert.Equal(t, "x@acme.com", rec.records[0]["LastName"])
	assert.Equal(t, "acme.com", rec.records[0]["Company"])
}

package intake

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onyxandcode/onyx-site/internal/leads"
	"github.com/onyxandcode/onyx-site/internal/notify"
	"github.com/onyxandcode/onyx-site/internal/sidechannel"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

type failingLeads struct{ calls int }

func (f *failingLeads) Create(context.Context, *leads.CreateLeadRequest) (*leads.Lead, error) {
	f.calls++
	return nil, errors.New("backend unreachable")
}

// relayServer counts posts and answers with status.
func relayServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

type countingRecorder struct{ outcomes []string }

func (c *countingRecorder) ObserveLeadSubmission(outcome string) {
	c.outcomes = append(c.outcomes, outcome)
}

func janeDoe() Form {
	return Form{Name: "Jane Doe", Email: "jane@x.com", Message: "Need a site"}
}

func TestSubmit_NotificationOutcomeNeverBlocksSuccess(t *testing.T) {
	logger := logging.New("error")
	cases := []struct {
		name     string
		notifier func(t *testing.T) notify.Notifier
	}{
		{"relay accepts", func(t *testing.T) notify.Notifier {
			srv, _ := relayServer(t, http.StatusOK)
			return notify.NewFormRelay(srv.URL, srv.Client(), logger)
		}},
		{"relay 4xx", func(t *testing.T) notify.Notifier {
			srv, _ := relayServer(t, http.StatusUnprocessableEntity)
			return notify.NewFormRelay(srv.URL, srv.Client(), logger)
		}},
		{"relay 5xx", func(t *testing.T) notify.Notifier {
			srv, _ := relayServer(t, http.StatusInternalServerError)
			return notify.NewFormRelay(srv.URL, srv.Client(), logger)
		}},
		{"network error", func(t *testing.T) notify.Notifier {
			srv := httptest.NewServer(http.NotFoundHandler())
			url := srv.URL
			srv.Close()
			return notify.NewFormRelay(url, nil, logger)
		}},
		{"notifier panics", func(t *testing.T) notify.Notifier {
			return notify.NotifierFunc(func(context.Context, notify.Submission) error { panic("boom") })
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := leads.NewInMemoryRepository()
			dispatcher := sidechannel.NewDispatcher(logger)
			s := NewSubmitter(SubmitterConfig{
				Leads:      repo,
				Notifier:   tc.notifier(t),
				Dispatcher: dispatcher,
				Logger:     logger,
			})

			result, err := s.Submit(context.Background(), janeDoe())
			dispatcher.Wait()

			require.NoError(t, err)
			assert.Equal(t, SuccessPath, result.Redirect)
			assert.NotEmpty(t, result.LeadID)
			assert.Equal(t, 1, repo.Len())
		})
	}
}

func TestSubmit_PersistenceFailureSkipsNotification(t *testing.T) {
	logger := logging.New("error")
	srv, hits := relayServer(t, http.StatusOK)
	store := &failingLeads{}
	recorder := &countingRecorder{}
	dispatcher := sidechannel.NewDispatcher(logger)

	s := NewSubmitter(SubmitterConfig{
		Leads:      store,
		Notifier:   notify.NewFormRelay(srv.URL, srv.Client(), logger),
		Dispatcher: dispatcher,
		Recorder:   recorder,
		Logger:     logger,
	})

	result, err := s.Submit(context.Background(), janeDoe())
	dispatcher.Wait()

	assert.Nil(t, result)
	var persistErr *PersistenceFailure
	require.True(t, errors.As(err, &persistErr))
	assert.EqualError(t, persistErr.Err, "backend unreachable")
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, int32(0), hits.Load(), "notification must not be attempted")
	assert.Equal(t, []string{OutcomePersistenceFailure}, recorder.outcomes)
}

func TestSubmit_StatusAlwaysNew(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	s := NewSubmitter(SubmitterConfig{Leads: repo, Logger: logging.New("error")})

	form := janeDoe()
	form.Message = `status=Closed; {"status":"Won"}`
	result, err := s.Submit(context.Background(), form)
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), result.LeadID)
	require.NoError(t, err)
	assert.Equal(t, leads.StatusNew, stored.Status)
}

func TestSubmit_TwiceCreatesTwoLeads(t *testing.T) {
	logger := logging.New("error")
	srv, hits := relayServer(t, http.StatusOK)
	repo := leads.NewInMemoryRepository()
	dispatcher := sidechannel.NewDispatcher(logger)
	s := NewSubmitter(SubmitterConfig{
		Leads:      repo,
		Notifier:   notify.NewFormRelay(srv.URL, srv.Client(), logger),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	first, err := s.Submit(context.Background(), janeDoe())
	require.NoError(t, err)
	second, err := s.Submit(context.Background(), janeDoe())
	require.NoError(t, err)
	dispatcher.Wait()

	assert.NotEqual(t, first.LeadID, second.LeadID)
	assert.Equal(t, 2, repo.Len())
	assert.Equal(t, int32(2), hits.Load())
}

func TestSubmit_InvalidFormStoresNothing(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	recorder := &countingRecorder{}
	s := NewSubmitter(SubmitterConfig{Leads: repo, Recorder: recorder, Logger: logging.New("error")})

	_, err := s.Submit(context.Background(), Form{Email: "jane@x.com", Message: "hi"})
	assert.ErrorIs(t, err, ErrInvalidForm)
	assert.ErrorIs(t, err, leads.ErrInvalidName)
	assert.Equal(t, 0, repo.Len())
	assert.Equal(t, []string{OutcomeInvalid}, recorder.outcomes)
}

type fakeAttachments struct {
	enabled bool
	keys    []string
	err     error
}

func (f *fakeAttachments) Enabled() bool { return f.enabled }

func (f *fakeAttachments) Put(_ context.Context, leadID, filename, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key := leadID + "/" + filename
	f.keys = append(f.keys, key)
	return key, nil
}

func TestSubmit_ArchivesAttachmentBestEffort(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	store := &fakeAttachments{enabled: true, err: errors.New("bucket missing")}
	s := NewSubmitter(SubmitterConfig{Leads: repo, Attachments: store, Logger: logging.New("error")})

	form := janeDoe()
	form.Attachment = &notify.Attachment{Filename: "brief.pdf", Data: []byte("pdf")}
	result, err := s.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, SuccessPath, result.Redirect)

	store.err = nil
	result, err = s.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, []string{result.LeadID + "/brief.pdf"}, store.keys)
}

func TestSubmit_NotifierSeesStoredLeadID(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	var got notify.Submission
	s := NewSubmitter(SubmitterConfig{
		Leads: repo,
		Notifier: notify.NotifierFunc(func(_ context.Context, sub notify.Submission) error {
			got = sub
			return nil
		}),
		Logger: logging.New("error"),
	})

	result, err := s.Submit(context.Background(), janeDoe())
	require.NoError(t, err)
	assert.Equal(t, result.LeadID, got.LeadID)
	assert.Equal(t, "Jane Doe", got.Name)
}

func TestNotificationFailureUnwraps(t *testing.T) {
	cause := &notify.RelayStatusError{StatusCode: 500}
	err := error(&NotificationFailure{Channel: TaskNotify, LeadID: "l1", Err: cause})
	var statusErr *notify.RelayStatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Contains(t, err.Error(), "lead l1")
}

package worker_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hivemind/apps/ingestor/internal/config"
	"hivemind/apps/ingestor/internal/ingest"
	"hivemind/apps/ingestor/internal/worker"
)

func requestPayload() worker.IngestRequestPayload {
	return worker.IngestRequestPayload{
		CommunityID:   "c1",
		PlatformID:    "p1",
		Documents:     []ingest.Document{{ID: "d1", Text: "hello"}},
		CorrelationID: "corr-1",
	}
}

func TestIngestConsumer_HandleMessage(t *testing.T) {
	r := new(MockBatchRunner)
	p := new(MockResultPublisher)
	consumer := worker.NewIngestConsumer(r, p)

	result := &ingest.BatchResult{
		Collection:    "c1_p1",
		OverallStatus: ingest.StatusSuccess,
		Outcomes: []ingest.ChunkOutcome{
			{ChunkIndex: 0, Status: ingest.StatusSuccess, Attempts: 1, DocumentIDs: []string{"d1"}},
		},
	}

	r.On("IngestBatch", mock.Anything, mock.MatchedBy(func(req ingest.Request) bool {
		return req.CommunityID == "c1" && len(req.Documents) == 1
	}), 0).Return(result, nil)

	p.On("Publish", config.TopicIngestResult, mock.MatchedBy(func(body []byte) bool {
		var out worker.IngestResultPayload
		require.NoError(t, json.Unmarshal(body, &out))
		return out.Collection == "c1_p1" &&
			out.Status == ingest.StatusSuccess &&
			out.CorrelationID == "corr-1"
	})).Return(nil)

	body, _ := json.Marshal(requestPayload())
	err := consumer.HandleMessage(&nsq.Message{Body: body})

	assert.NoError(t, err)
	r.AssertExpectations(t)
	p.AssertExpectations(t)
}

func TestIngestConsumer_PoisonPill(t *testing.T) {
	r := new(MockBatchRunner)
	p := new(MockResultPublisher)
	consumer := worker.NewIngestConsumer(r, p)

	err := consumer.HandleMessage(&nsq.Message{Body: []byte("invalid json")})
	assert.NoError(t, err) // Should return nil (ack)
	r.AssertNotCalled(t, "IngestBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestConsumer_EmptyBody(t *testing.T) {
	consumer := worker.NewIngestConsumer(new(MockBatchRunner), new(MockResultPublisher))
	assert.NoError(t, consumer.HandleMessage(&nsq.Message{}))
}

func TestIngestConsumer_ValidationErrorIsAcked(t *testing.T) {
	r := new(MockBatchRunner)
	p := new(MockResultPublisher)
	consumer := worker.NewIngestConsumer(r, p)

	r.On("IngestBatch", mock.Anything, mock.Anything, 0).Return(nil, ingest.ErrNoDocuments)
	p.On("Publish", config.TopicIngestResult, mock.MatchedBy(func(body []byte) bool {
		var out worker.IngestResultPayload
		require.NoError(t, json.Unmarshal(body, &out))
		return out.Status == ingest.StatusFailed && out.Error != ""
	})).Return(nil)

	payload := requestPayload()
	payload.Documents = nil
	body, _ := json.Marshal(payload)

	err := consumer.HandleMessage(&nsq.Message{Body: body})
	assert.NoError(t, err, "validation failures must not be redelivered")
	p.AssertExpectations(t)
}

func TestIngestConsumer_OrchestrationErrorIsRetried(t *testing.T) {
	r := new(MockBatchRunner)
	p := new(MockResultPublisher)
	consumer := worker.NewIngestConsumer(r, p)

	r.On("IngestBatch", mock.Anything, mock.Anything, 0).Return(nil, errors.New("weaviate unreachable"))

	body, _ := json.Marshal(requestPayload())
	err := consumer.HandleMessage(&nsq.Message{Body: body})
	assert.Error(t, err)
	p.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestIngestRequestPayload_Request(t *testing.T) {
	payload := requestPayload()
	payload.CollectionName = "custom"
	req := payload.Request()

	assert.Equal(t, "c1", req.CommunityID)
	assert.Equal(t, "p1", req.PlatformID)
	assert.Equal(t, "custom", req.CollectionName)
	assert.Len(t, req.Documents, 1)
}

package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

var qdrantTracer = otel.Tracer("graphd.vectorstore.qdrant")

// pointNamespace derives stable point ids from document ids.
var pointNamespace = uuid.MustParse("6f1f8f5e-7c1b-4b8e-9a57-2f0c8d7e4a10")

// QdrantConfig holds configuration for the Qdrant gRPC client.
type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	// VectorSize is used when the collection has to be created.
	VectorSize uint64
	// MaxMessageSize bounds gRPC messages; defaults to 50MB.
	MaxMessageSize int
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Collection == "" {
		c.Collection = "graphd_documents"
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = 50 * 1024 * 1024
	}
}

// Validate validates the configuration.
func (c QdrantConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", ErrInvalidConfig, c.Port)
	}
	if c.VectorSize == 0 {
		return fmt.Errorf("%w: vector size required", ErrInvalidConfig)
	}
	return ValidateCollectionName(c.Collection)
}

// QdrantIndex implements Index on a Qdrant collection.
type QdrantIndex struct {
	client *qdrant.Client
	config QdrantConfig
	logger *zap.Logger
}

var _ Index = (*QdrantIndex)(nil)

// NewQdrantIndex connects to Qdrant and creates the collection if needed.
func NewQdrantIndex(ctx context.Context, config QdrantConfig, logger *zap.Logger) (*QdrantIndex, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if !config.UseTLS {
		logger.Warn("qdrant gRPC using plaintext (TLS disabled)", zap.String("host", config.Host))
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		APIKey: config.APIKey,
		UseTLS: config.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(config.MaxMessageSize),
				grpc.MaxCallSendMsgSize(config.MaxMessageSize),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	idx := &QdrantIndex{client: client, config: config, logger: logger}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := idx.ensureCollection(initCtx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return idx, nil
}

func (s *QdrantIndex) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.config.Collection)
	if err != nil {
		return fmt.Errorf("%w: checking collection %s: %v", ErrConnectionFailed, s.config.Collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.config.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.config.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.config.Collection, err)
	}
	s.logger.Info("created qdrant collection",
		zap.String("collection", s.config.Collection),
		zap.Uint64("vector_size", s.config.VectorSize),
	)
	return nil
}

// Query implements Index.
func (s *QdrantIndex) Query(ctx context.Context, vector []float32, topK int, filter Filter) (_ []Hit, err error) {
	ctx, span := qdrantTracer.Start(ctx, "QdrantIndex.Query")
	defer span.End()
	start := time.Now()
	defer func() { observe("qdrant", "query", start, err) }()

	span.SetAttributes(
		attribute.String("collection", s.config.Collection),
		attribute.Int("top_k", topK),
	)

	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", topK)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty vector", ErrInvalidVector)
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.config.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         buildQdrantFilter(filter),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection %s: %w", s.config.Collection, err)
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, hitFromPayload(p.GetPayload(), p.GetScore()))
	}
	span.SetAttributes(attribute.Int("results_count", len(hits)))
	span.SetStatus(codes.Ok, "success")
	return hits, nil
}

// Upsert implements Index.
func (s *QdrantIndex) Upsert(ctx context.Context, records []Record) (err error) {
	ctx, span := qdrantTracer.Start(ctx, "QdrantIndex.Upsert")
	defer span.End()
	start := time.Now()
	defer func() { observe("qdrant", "upsert", start, err) }()

	span.SetAttributes(attribute.Int("record_count", len(records)))

	if len(records) == 0 {
		return ErrEmptyRecords
	}
	points := make([]*qdrant.PointStruct, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
		points[i] = pointFromRecord(r)
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.config.Collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upserting %d points into %s: %w", len(points), s.config.Collection, err)
	}
	span.SetStatus(codes.Ok, "success")
	return nil
}

// Close closes the gRPC connection.
func (s *QdrantIndex) Close() error {
	return s.client.Close()
}

// PointID returns the Qdrant point id of a record.
func PointID(r Record) string {
	return uuid.NewSHA1(pointNamespace, []byte(r.Key())).String()
}

func pointFromRecord(r Record) *qdrant.PointStruct {
	payload := map[string]*qdrant.Value{
		MetaDocID:       {Kind: &qdrant.Value_StringValue{StringValue: r.DocID}},
		MetaOrgID:       {Kind: &qdrant.Value_StringValue{StringValue: r.OrgID}},
		MetaTitle:       {Kind: &qdrant.Value_StringValue{StringValue: r.Title}},
		"text":          {Kind: &qdrant.Value_StringValue{StringValue: r.Text}},
		MetaArchived:    {Kind: &qdrant.Value_BoolValue{BoolValue: r.Archived}},
		MetaContentHash: {Kind: &qdrant.Value_StringValue{StringValue: r.ContentHash}},
	}
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(PointID(r)),
		Vectors: qdrant.NewVectors(r.Vector...),
		Payload: payload,
	}
}

func hitFromPayload(payload map[string]*qdrant.Value, score float32) Hit {
	return Hit{
		DocID: payload[MetaDocID].GetStringValue(),
		Title: payload[MetaTitle].GetStringValue(),
		Text:  payload["text"].GetStringValue(),
		Score: score,
	}
}

// buildQdrantFilter scopes a query to one org and optionally drops archived
// points. Points without an archived flag are kept.
func buildQdrantFilter(f Filter) *qdrant.Filter {
	out := &qdrant.Filter{
		Must: []*qdrant.Condition{
			{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key: MetaOrgID,
						Match: &qdrant.Match{
							MatchValue: &qdrant.Match_Keyword{Keyword: f.OrgID},
						},
					},
				},
			},
		},
	}
	if f.ExcludeArchived {
		out.MustNot = []*qdrant.Condition{
			{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key: MetaArchived,
						Match: &qdrant.Match{
							MatchValue: &qdrant.Match_Boolean{Boolean: true},
						},
					},
				},
			},
		}
	}
	return out
}

package repository

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"github.com/timmy/memegen/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

const (
	defaultVectorDimension = 1024
)

// templateNamespace seeds deterministic point IDs so re-indexing a template
// overwrites its point instead of duplicating it.
var templateNamespace = uuid.MustParse("6f1b8f2e-4c1d-5a7e-9b3f-2d0c8e4a1b7c")

// TemplatePointID returns the Qdrant point ID for a template.
func TemplatePointID(templateID string) string {
	return uuid.NewSHA1(templateNamespace, []byte(templateID)).String()
}

// QdrantConnectionConfig holds configuration for Qdrant connection
type QdrantConnectionConfig struct {
	Host            string
	Port            int
	Collection      string
	APIKey          string // Qdrant Cloud API Key (enables TLS automatically)
	UseTLS          bool
	VectorDimension int
}

// apiKeyInterceptor creates a unary interceptor that adds API key to metadata
func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// QdrantRepository stores template name embeddings in Qdrant.
type QdrantRepository struct {
	conn            *grpc.ClientConn
	pointsClient    pb.PointsClient
	collectClient   pb.CollectionsClient
	collectionName  string
	vectorDimension int
}

// NewQdrantRepository creates a new QdrantRepository.
// Supports both local Qdrant (insecure) and Qdrant Cloud (TLS + API Key).
func NewQdrantRepository(cfg *QdrantConnectionConfig) (*QdrantRepository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	vectorDimension := cfg.VectorDimension
	if vectorDimension <= 0 {
		vectorDimension = defaultVectorDimension
	}

	var opts []grpc.DialOption

	// TLS is enabled if: APIKey is set OR UseTLS is explicitly true
	if cfg.UseTLS || cfg.APIKey != "" {
		creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS13})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		if cfg.APIKey != "" {
			opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
		}
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	return &QdrantRepository{
		conn:            conn,
		pointsClient:    pb.NewPointsClient(conn),
		collectClient:   pb.NewCollectionsClient(conn),
		collectionName:  cfg.Collection,
		vectorDimension: vectorDimension,
	}, nil
}

// Close closes the gRPC connection
func (r *QdrantRepository) Close() error {
	return r.conn.Close()
}

// EnsureCollection creates the collection if it doesn't exist
func (r *QdrantRepository) EnsureCollection(ctx context.Context) error {
	info, err := r.collectClient.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collectionName,
	})
	if err == nil {
		if size, ok := collectionVectorSize(info.GetResult()); ok && size != uint64(r.vectorDimension) {
			return fmt.Errorf("collection %s has vector size %d, expected %d", r.collectionName, size, r.vectorDimension)
		}
		return nil
	}

	_, err = r.collectClient.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collectionName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(r.vectorDimension),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

func collectionVectorSize(info *pb.CollectionInfo) (uint64, bool) {
	vectors := info.GetConfig().GetParams().GetVectorsConfig()
	if vectors == nil {
		return 0, false
	}
	if single := vectors.GetParams(); single != nil && single.GetSize() > 0 {
		return single.GetSize(), true
	}
	for _, vectorParams := range vectors.GetParamsMap().GetMap() {
		if size := vectorParams.GetSize(); size > 0 {
			return size, true
		}
	}
	return 0, false
}

// UpsertTemplates writes one point per template, keyed by TemplatePointID.
func (r *QdrantRepository) UpsertTemplates(ctx context.Context, templates []domain.Template, vectors [][]float32) error {
	if len(templates) != len(vectors) {
		return fmt.Errorf("got %d vectors for %d templates", len(vectors), len(templates))
	}
	if len(templates) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(templates))
	for i, t := range templates {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: TemplatePointID(t.ID)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vectors[i]},
				},
			},
			Payload: templateToPayload(t),
		}
	}

	wait := true
	_, err := r.pointsClient.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collectionName,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert template points: %w", err)
	}
	return nil
}

// TemplateHit is one semantic search match.
type TemplateHit struct {
	Template domain.Template
	Score    float32
}

// SearchTemplates returns the topK templates closest to vector.
func (r *QdrantRepository) SearchTemplates(ctx context.Context, vector []float32, topK int) ([]TemplateHit, error) {
	resp, err := r.pointsClient.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collectionName,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	hits := make([]TemplateHit, 0, len(resp.GetResult()))
	for _, scored := range resp.GetResult() {
		t := payloadToTemplate(scored.GetPayload())
		if t.IsZero() {
			continue
		}
		hits = append(hits, TemplateHit{Template: t, Score: scored.GetScore()})
	}
	return hits, nil
}

func templateToPayload(t domain.Template) map[string]*pb.Value {
	return map[string]*pb.Value{
		"template_id": {Kind: &pb.Value_StringValue{StringValue: t.ID}},
		"name":        {Kind: &pb.Value_StringValue{StringValue: t.Name}},
		"image_url":   {Kind: &pb.Value_StringValue{StringValue: t.ImageURL}},
		"width":       {Kind: &pb.Value_IntegerValue{IntegerValue: int64(t.Width)}},
		"height":      {Kind: &pb.Value_IntegerValue{IntegerValue: int64(t.Height)}},
		"box_count":   {Kind: &pb.Value_IntegerValue{IntegerValue: int64(t.BoxCount)}},
	}
}

func payloadToTemplate(payload map[string]*pb.Value) domain.Template {
	if payload == nil {
		return domain.Template{}
	}
	return domain.Template{
		ID:       payload["template_id"].GetStringValue(),
		Name:     payload["name"].GetStringValue(),
		ImageURL: payload["image_url"].GetStringValue(),
		Width:    int(payload["width"].GetIntegerValue()),
		Height:   int(payload["height"].GetIntegerValue()),
		BoxCount: int(payload["box_count"].GetIntegerValue()),
	}
}

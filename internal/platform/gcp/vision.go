package gcp

import (
	"context"
	"fmt"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/yungbote/ehon-backend/internal/platform/ctxutil"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

// Label is one Cloud Vision label annotation; Score is in [0,1].
type Label struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

type Vision interface {
	DetectLabels(ctx context.Context, img []byte) ([]Label, error)
	Close() error
}

type visionService struct {
	log          *logger.Logger
	visionClient *vision.ImageAnnotatorClient
	maxResults   int32
}

func NewVision(ctx context.Context, log *logger.Logger, creds Credentials) (Vision, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	vClient, err := vision.NewImageAnnotatorClient(ctx, ClientOptions(creds)...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &visionService{
		log:          log.With("service", "gcp.Vision"),
		visionClient: vClient,
		maxResults:   20,
	}, nil
}

func (s *visionService) Close() error {
	if s == nil || s.visionClient == nil {
		return nil
	}
	return s.visionClient.Close()
}

func (s *visionService) DetectLabels(ctx context.Context, img []byte) ([]Label, error) {
	if len(img) == 0 {
		return nil, fmt.Errorf("image required")
	}
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: img},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: s.maxResults},
		},
	}
	br := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{req}}
	resp, err := s.visionClient.BatchAnnotateImages(ctx, br)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return nil, nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	out := make([]Label, 0, len(r0.LabelAnnotations))
	for _, a := range r0.LabelAnnotations {
		if a == nil {
			continue
		}
		desc := collapseWhitespace(a.Description)
		if desc == "" {
			continue
		}
		out = append(out, Label{Description: desc, Score: float64(a.Score)})
	}
	s.log.Debug("vision labels detected", "count", len(out))
	return out, nil
}

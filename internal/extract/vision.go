package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// ImageAnnotator is the subset of the Vision client used for OCR.
type ImageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// VisionConfig selects credentials and the language hint.
type VisionConfig struct {
	Language        string
	CredentialsJSON string
	CredentialsFile string
}

// VisionOCR recognizes document text with Google Cloud Vision.
type VisionOCR struct {
	client   ImageAnnotator
	language string
}

// NewVisionOCR dials Vision. Inline JSON credentials win over a credentials
// file; with neither, application default credentials are used.
func NewVisionOCR(ctx context.Context, cfg VisionConfig) (*VisionOCR, error) {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}
	return NewVisionOCRWithClient(client, cfg.Language), nil
}

// NewVisionOCRWithClient wraps an existing client.
func NewVisionOCRWithClient(client ImageAnnotator, language string) *VisionOCR {
	if language == "" {
		language = "pt"
	}
	return &VisionOCR{client: client, language: language}
}

// Recognize runs DOCUMENT_TEXT_DETECTION on image.
func (v *VisionOCR) Recognize(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", errors.New("empty image")
	}
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:        &visionpb.Image{Content: image},
			Features:     []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
			ImageContext: &visionpb.ImageContext{LanguageHints: []string{v.language}},
		}},
	}
	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", errors.New("vision annotate: empty response")
	}
	res := resp.GetResponses()[0]
	if res.GetError() != nil && res.GetError().GetCode() != 0 {
		return "", fmt.Errorf("vision annotate: %s", res.GetError().GetMessage())
	}
	if text := res.GetFullTextAnnotation().GetText(); text != "" {
		return text, nil
	}
	if anns := res.GetTextAnnotations(); len(anns) > 0 {
		return anns[0].GetDescription(), nil
	}
	return "", nil
}

// Close releases the Vision client.
func (v *VisionOCR) Close() error {
	if v == nil || v.client == nil {
		return nil
	}
	return v.client.Close()
}

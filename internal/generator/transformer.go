package generator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sitelaunch/sitelaunch/api/internal/models"
)

// ArtifactFileName is the per-site configuration artifact consumed by the
// build executor.
const ArtifactFileName = "site-config.json"

// DefaultDeploymentPort is used when the configuration document does not
// declare one.
const DefaultDeploymentPort = 3000

// ConfigTransformer turns a wizard session's content into the build-ready
// site-configuration document. The document's full schema belongs to the
// wizard side; the pipeline treats everything outside meta and deployment
// as an opaque, versioned blob.
type ConfigTransformer interface {
	Transform(session *models.WizardSession, siteID, domain string) ([]byte, error)
}

// JSONTransformer is the default transformer: it carries the session's
// structured config through unchanged and stamps the meta and deployment
// sections the builder and the pipeline rely on.
type JSONTransformer struct{}

// NewJSONTransformer creates the default transformer
func NewJSONTransformer() *JSONTransformer {
	return &JSONTransformer{}
}

// Transform produces the site-config.json document
func (t *JSONTransformer) Transform(session *models.WizardSession, siteID, domain string) ([]byte, error) {
	doc := map[string]interface{}{}
	if len(session.ConfigData) > 0 {
		if err := json.Unmarshal(session.ConfigData, &doc); err != nil {
			return nil, fmt.Errorf("invalid session config document: %w", err)
		}
	}

	doc["meta"] = map[string]interface{}{
		"siteId":      siteID,
		"domain":      domain,
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
		"version":     1,
	}

	deployment, _ := doc["deployment"].(map[string]interface{})
	if deployment == nil {
		deployment = map[string]interface{}{}
	}
	if _, ok := deployment["port"]; !ok {
		deployment["port"] = DefaultDeploymentPort
	}
	doc["deployment"] = deployment

	return json.MarshalIndent(doc, "", "  ")
}

// artifactDocument is the slice of the configuration artifact the pipeline
// reads back after the build.
type artifactDocument struct {
	Deployment struct {
		Port int `json:"port"`
	} `json:"deployment"`
}

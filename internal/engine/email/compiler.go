// Package email composes layout resolution, payload defaulting and template
// compilation into the final subject/content/HTML of an email step.
package email

import (
	"context"
	_ "embed"
	"strings"
	"time"

	"notification-engine/internal/common/errors"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/common/metrics"
	"notification-engine/internal/engine/layout"
	"notification-engine/internal/engine/payload"
	"notification-engine/internal/engine/template"
	"notification-engine/internal/models"
)

//go:embed templates/layout.html
var defaultLayoutContent string

//go:embed templates/basic.html
var basicBlockContent string

// DefaultBrandingColor is applied when the organization carries no branding.
const DefaultBrandingColor = "#f47373"

// OrganizationReader is the read-only organization lookup port.
type OrganizationReader interface {
	FindByID(ctx context.Context, id string) (*models.Organization, error)
}

// Command is the input of one email compilation.
type Command struct {
	OrganizationID string
	EnvironmentID  string
	LayoutID       string
	ContentType    models.ContentType
	Content        string
	Blocks         []models.EmailBlock
	Subject        string
	Preheader      string
	Payload        map[string]interface{}
}

// Result is the compiled email. Blocks is populated in editor mode, Content
// carries the untouched raw template string otherwise.
type Result struct {
	HTML    string
	Subject string
	Content string
	Blocks  []models.EmailBlock
}

type Compiler struct {
	organizations OrganizationReader
	layouts       *layout.Resolver
	renderer      *template.Compiler
	logger        logger.Logger
}

func NewCompiler(organizations OrganizationReader, layouts *layout.Resolver, renderer *template.Compiler, log logger.Logger) *Compiler {
	return &Compiler{
		organizations: organizations,
		layouts:       layouts,
		renderer:      renderer,
		logger:        log,
	}
}

// Compile runs the five ordered render passes: subject, per-block content,
// preheader, message body, final HTML. Later passes consume the output of
// earlier ones, so the order is fixed. Compilation is all-or-nothing; partial
// HTML is never returned.
func (c *Compiler) Compile(ctx context.Context, cmd Command) (*Result, error) {
	organization, err := c.organizations.FindByID(ctx, cmd.OrganizationID)
	if err != nil {
		return nil, err
	}
	if organization == nil {
		return nil, errors.NewOrganizationNotFoundError(cmd.OrganizationID)
	}

	resolution := c.layouts.Resolve(ctx, cmd.LayoutID, cmd.EnvironmentID, cmd.OrganizationID)
	layoutContent := resolution.Content
	if resolution.UseDefault {
		layoutContent = defaultLayoutContent
	}

	defaults := payload.Verify(resolution.Variables, cmd.Payload)
	merged := payload.Merge(defaults, cmd.Payload)

	renderContext := buildRenderContext(merged, cmd, organization)
	isEditorMode := cmd.ContentType == models.ContentTypeEditor

	subject, err := c.renderTrimmed(cmd.Subject, renderContext, "subject")
	if err != nil {
		return nil, errors.NewContentGenerationError(err)
	}

	renderedBlocks := cmd.Blocks
	if isEditorMode {
		renderedBlocks, err = c.renderBlocks(cmd.Blocks, renderContext)
		if err != nil {
			return nil, errors.NewContentGenerationError(err)
		}
	}

	preheader := cmd.Preheader
	if preheader != "" {
		preheader, err = c.renderTrimmed(preheader, renderContext, "preheader")
		if err != nil {
			return nil, errors.NewContentGenerationError(err)
		}
	}

	injectedLayout := InjectPreheader(layoutContent)

	templateVariables := payload.Merge(renderContext, map[string]interface{}{
		"subject":   subject,
		"preheader": preheader,
		"body":      "",
	})
	if isEditorMode {
		templateVariables["blocks"] = blocksToContext(renderedBlocks)
	}

	bodyTemplate := cmd.Content
	if isEditorMode {
		bodyTemplate = basicBlockContent
	}
	body, err := c.renderPass(bodyTemplate, templateVariables, "body")
	if err != nil {
		return nil, errors.NewTemplateCompilationError(err)
	}

	templateVariables["body"] = body

	html, err := c.renderPass(injectedLayout, templateVariables, "html")
	if err != nil {
		return nil, errors.NewTemplateCompilationError(err)
	}

	result := &Result{
		HTML:    html,
		Subject: subject,
	}
	if isEditorMode {
		result.Blocks = renderedBlocks
	} else {
		result.Content = cmd.Content
	}
	return result, nil
}

func buildRenderContext(merged map[string]interface{}, cmd Command, organization *models.Organization) map[string]interface{} {
	brandingColor := DefaultBrandingColor
	brandingLogo := ""
	if organization.Branding != nil {
		if organization.Branding.Color != "" {
			brandingColor = organization.Branding.Color
		}
		brandingLogo = organization.Branding.Logo
	}

	return payload.Merge(merged, map[string]interface{}{
		"subject":   cmd.Subject,
		"preheader": cmd.Preheader,
		"blocks":    []interface{}{},
		"branding": map[string]interface{}{
			"logo":  brandingLogo,
			"color": brandingColor,
		},
	})
}

// renderBlocks renders each block's content and url independently against the
// same context, preserving order and every other block field.
func (c *Compiler) renderBlocks(blocks []models.EmailBlock, renderContext map[string]interface{}) ([]models.EmailBlock, error) {
	rendered := make([]models.EmailBlock, len(blocks))
	for i, block := range blocks {
		content, err := c.renderTrimmed(block.Content, renderContext, "block")
		if err != nil {
			return nil, err
		}
		url, err := c.renderTrimmed(block.URL, renderContext, "block")
		if err != nil {
			return nil, err
		}

		rendered[i] = block
		rendered[i].Content = content
		rendered[i].URL = url
	}
	return rendered, nil
}

func (c *Compiler) renderTrimmed(body string, data map[string]interface{}, pass string) (string, error) {
	rendered, err := c.renderPass(body, data, pass)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(rendered), nil
}

func (c *Compiler) renderPass(body string, data map[string]interface{}, pass string) (string, error) {
	started := time.Now()
	rendered, err := c.renderer.Compile(body, data)
	metrics.TemplateRenderDuration.WithLabelValues(pass).Observe(time.Since(started).Seconds())
	return rendered, err
}

func blocksToContext(blocks []models.EmailBlock) []interface{} {
	out := make([]interface{}, len(blocks))
	for i, block := range blocks {
		out[i] = map[string]interface{}{
			"type":    block.Type,
			"content": block.Content,
			"url":     block.URL,
		}
	}
	return out
}

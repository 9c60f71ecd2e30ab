package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chatassist/chatassist/internal/util"
	"github.com/chatassist/chatassist/server/internal/apierrors"
	"github.com/chatassist/chatassist/store"
)

// Number of most recent examples embedded in the creator detail response.
const creatorDetailExampleLimit = 5

type CreateCreatorRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AvatarURL   string `json:"avatar_url"`
	Active      *bool  `json:"active"`
}

type UpdateCreatorRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	AvatarURL   *string `json:"avatar_url"`
	Active      *bool   `json:"active"`
}

type UpsertCreatorStyleRequest struct {
	ApprovedEmojis          *[]string          `json:"approved_emojis"`
	CaseStyle               *string            `json:"case_style"`
	TextReplacements        *map[string]string `json:"text_replacements"`
	SentenceSeparators      *[]string          `json:"sentence_separators"`
	PunctuationRules        *map[string]bool   `json:"punctuation_rules"`
	Abbreviations           *map[string]string `json:"abbreviations"`
	MessageLengthPreference *string            `json:"message_length_preference"`
	StyleInstructions       *string            `json:"style_instructions"`
	ToneRange               *string            `json:"tone_range"`
}

type AddStyleExampleRequest struct {
	FanMessage       string   `json:"fan_message"`
	CreatorResponses []string `json:"creator_responses"`
}

type ListCreatorsResponse struct {
	Creators []*Creator `json:"creators"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

type CreatorResponse struct {
	Creator *Creator `json:"creator"`
}

type CreatorStyleResponse struct {
	Style *CreatorStyle `json:"style"`
}

type StyleExampleResponse struct {
	Example *StyleExample `json:"example"`
}

type ListStyleExamplesResponse struct {
	Examples []*StyleExample `json:"examples"`
}

// ListCreators returns a page of creators ordered by name. Inactive
// creators are hidden unless active_only=false.
func (s *APIV1Service) ListCreators(c echo.Context) error {
	ctx := c.Request().Context()
	page, pageSize := extractPagination(c)
	find := &store.FindCreator{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if c.QueryParam("active_only") != "false" {
		active := true
		find.Active = &active
	}

	creators, err := s.Store.ListCreators(ctx, find)
	if err != nil {
		return apierrors.Internal("failed to list creators", err)
	}
	total, err := s.Store.CountCreators(ctx, &store.FindCreator{Active: find.Active})
	if err != nil {
		return apierrors.Internal("failed to count creators", err)
	}

	response := &ListCreatorsResponse{
		Creators: make([]*Creator, 0, len(creators)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, creator := range creators {
		response.Creators = append(response.Creators, convertCreatorFromStore(creator))
	}
	return c.JSON(http.StatusOK, response)
}

// GetCreator returns a creator together with its style and the most recent
// examples. Inactive creators stay fetchable by id.
func (s *APIV1Service) GetCreator(c echo.Context) error {
	ctx := c.Request().Context()
	creator, err := s.findCreatorByPathID(ctx, c)
	if err != nil {
		return err
	}

	response := convertCreatorFromStore(creator)
	style, err := s.Store.GetCreatorStyle(ctx, &store.FindCreatorStyle{CreatorID: creator.ID})
	if err != nil {
		return apierrors.Internal("failed to get creator style", err)
	}
	if style != nil {
		response.Style = convertCreatorStyleFromStore(style)
	}
	examples, err := s.Store.ListStyleExamples(ctx, &store.FindStyleExample{
		CreatorID: &creator.ID,
		Limit:     creatorDetailExampleLimit,
	})
	if err != nil {
		return apierrors.Internal("failed to list style examples", err)
	}
	response.Examples = make([]*StyleExample, 0, len(examples))
	for _, example := range examples {
		response.Examples = append(response.Examples, convertStyleExampleFromStore(example))
	}
	return c.JSON(http.StatusOK, &CreatorResponse{Creator: response})
}

// CreateCreator registers a new creator profile.
func (s *APIV1Service) CreateCreator(c echo.Context) error {
	ctx := c.Request().Context()
	request := &CreateCreatorRequest{}
	if err := c.Bind(request); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	request.Name = strings.TrimSpace(request.Name)
	if request.Name == "" {
		return apierrors.InvalidArgument("name is required")
	}
	active := true
	if request.Active != nil {
		active = *request.Active
	}

	creator, err := s.Store.CreateCreator(ctx, &store.Creator{
		ID:          util.GenUUID(),
		Name:        request.Name,
		Description: request.Description,
		AvatarURL:   request.AvatarURL,
		Active:      active,
	})
	if err != nil {
		return apierrors.Internal("failed to create creator", err)
	}
	return c.JSON(http.StatusCreated, &CreatorResponse{Creator: convertCreatorFromStore(creator)})
}

// UpdateCreator applies a partial update. Absent fields keep their stored
// value, so an empty body is a no-op.
func (s *APIV1Service) UpdateCreator(c echo.Context) error {
	ctx := c.Request().Context()
	creatorID, err := extractCreatorID(c)
	if err != nil {
		return err
	}
	request := &UpdateCreatorRequest{}
	if err := c.Bind(request); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	if request.Name != nil && strings.TrimSpace(*request.Name) == "" {
		return apierrors.InvalidArgument("name cannot be empty")
	}

	creator, err := s.Store.UpdateCreator(ctx, &store.UpdateCreator{
		ID:          creatorID,
		Name:        request.Name,
		Description: request.Description,
		AvatarURL:   request.AvatarURL,
		Active:      request.Active,
	})
	if err != nil {
		return apierrors.Internal("failed to update creator", err)
	}
	if creator == nil {
		return apierrors.NotFound("Creator not found")
	}
	return c.JSON(http.StatusOK, &CreatorResponse{Creator: convertCreatorFromStore(creator)})
}

// UpsertCreatorStyle creates or merges the creator's writing style. Absent
// fields keep their stored value; provided empty collections clear it.
func (s *APIV1Service) UpsertCreatorStyle(c echo.Context) error {
	ctx := c.Request().Context()
	creator, err := s.findCreatorByPathID(ctx, c)
	if err != nil {
		return err
	}
	request := &UpsertCreatorStyleRequest{}
	if err := c.Bind(request); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}

	style, err := s.Store.UpsertCreatorStyle(ctx, &store.UpsertCreatorStyle{
		CreatorID:               creator.ID,
		ApprovedEmojis:          request.ApprovedEmojis,
		CaseStyle:               request.CaseStyle,
		TextReplacements:        request.TextReplacements,
		SentenceSeparators:      request.SentenceSeparators,
		PunctuationRules:        request.PunctuationRules,
		Abbreviations:           request.Abbreviations,
		MessageLengthPreference: request.MessageLengthPreference,
		StyleInstructions:       request.StyleInstructions,
		ToneRange:               request.ToneRange,
	})
	if err != nil {
		return apierrors.Internal("failed to upsert creator style", err)
	}
	return c.JSON(http.StatusOK, &CreatorStyleResponse{Style: convertCreatorStyleFromStore(style)})
}

// AddStyleExample records a fan-message/creator-response pair for a creator.
func (s *APIV1Service) AddStyleExample(c echo.Context) error {
	ctx := c.Request().Context()
	creator, err := s.findCreatorByPathID(ctx, c)
	if err != nil {
		return err
	}
	request := &AddStyleExampleRequest{}
	if err := c.Bind(request); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	if strings.TrimSpace(request.FanMessage) == "" {
		return apierrors.InvalidArgument("fan_message is required")
	}
	if len(request.CreatorResponses) == 0 {
		return apierrors.InvalidArgument("creator_responses must be a non-empty list")
	}

	example, err := s.Store.CreateStyleExample(ctx, &store.StyleExample{
		ID:               util.GenUUID(),
		CreatorID:        creator.ID,
		FanMessage:       request.FanMessage,
		CreatorResponses: request.CreatorResponses,
	})
	if err != nil {
		return apierrors.Internal("failed to create style example", err)
	}
	return c.JSON(http.StatusCreated, &StyleExampleResponse{Example: convertStyleExampleFromStore(example)})
}

// ListStyleExamples returns a creator's examples, newest first.
func (s *APIV1Service) ListStyleExamples(c echo.Context) error {
	ctx := c.Request().Context()
	creator, err := s.findCreatorByPathID(ctx, c)
	if err != nil {
		return err
	}
	page, pageSize := extractPagination(c)
	examples, err := s.Store.ListStyleExamples(ctx, &store.FindStyleExample{
		CreatorID: &creator.ID,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	})
	if err != nil {
		return apierrors.Internal("failed to list style examples", err)
	}

	response := &ListStyleExamplesResponse{Examples: make([]*StyleExample, 0, len(examples))}
	for _, example := range examples {
		response.Examples = append(response.Examples, convertStyleExampleFromStore(example))
	}
	return c.JSON(http.StatusOK, response)
}

// DeleteStyleExample removes one example, scoped to its creator so an id
// from another creator cannot be deleted through this route.
func (s *APIV1Service) DeleteStyleExample(c echo.Context) error {
	ctx := c.Request().Context()
	creatorID, err := extractCreatorID(c)
	if err != nil {
		return err
	}
	exampleID := c.Param("exampleId")
	if !util.ValidateUUID(exampleID) {
		return apierrors.InvalidArgument("invalid example id")
	}

	examples, err := s.Store.ListStyleExamples(ctx, &store.FindStyleExample{
		ID:        &exampleID,
		CreatorID: &creatorID,
	})
	if err != nil {
		return apierrors.Internal("failed to find style example", err)
	}
	if len(examples) == 0 {
		return apierrors.NotFound("Example not found")
	}
	if err := s.Store.DeleteStyleExample(ctx, &store.DeleteStyleExample{
		ID:        exampleID,
		CreatorID: creatorID,
	}); err != nil {
		return apierrors.Internal("failed to delete style example", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// extractCreatorID validates the :id path parameter before it reaches the
// database, where a malformed UUID literal would surface as a 500.
func extractCreatorID(c echo.Context) (string, error) {
	creatorID := c.Param("id")
	if !util.ValidateUUID(creatorID) {
		return "", apierrors.InvalidArgument("invalid creator id")
	}
	return creatorID, nil
}

func (s *APIV1Service) findCreatorByPathID(ctx context.Context, c echo.Context) (*store.Creator, error) {
	creatorID, err := extractCreatorID(c)
	if err != nil {
		return nil, err
	}
	creator, err := s.Store.GetCreator(ctx, &store.FindCreator{ID: &creatorID})
	if err != nil {
		return nil, apierrors.Internal("failed to get creator", err)
	}
	if creator == nil {
		return nil, apierrors.NotFound("Creator not found")
	}
	return creator, nil
}

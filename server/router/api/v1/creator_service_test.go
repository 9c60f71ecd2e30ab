package v1

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/chatassist/chatassist/server/internal/apierrors"
)

const unknownCreatorID = "99999999-9999-9999-9999-999999999999"

func createTestCreator(t *testing.T, service *APIV1Service, name string) *Creator {
	t.Helper()
	c, rec := newRequestContext(http.MethodPost, "/api/creators", `{"name":"`+name+`"}`)
	require.NoError(t, service.CreateCreator(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	response := &CreatorResponse{}
	mustDecode(t, rec, response)
	return response.Creator
}

// setCreatorPath fills in the :id path parameter the router would provide.
func setCreatorPath(c echo.Context, creatorID string) {
	c.SetParamNames("id")
	c.SetParamValues(creatorID)
}

func addTestExample(t *testing.T, service *APIV1Service, creatorID, fanMessage string) *StyleExample {
	t.Helper()
	body := fmt.Sprintf(`{"fan_message":%q,"creator_responses":["hey you 💕"]}`, fanMessage)
	c, rec := newRequestContext(http.MethodPost, "/api/creators/"+creatorID+"/examples", body)
	setCreatorPath(c, creatorID)
	require.NoError(t, service.AddStyleExample(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	response := &StyleExampleResponse{}
	mustDecode(t, rec, response)
	return response.Example
}

func TestCreateCreator(t *testing.T) {
	service, _ := newTestService(t)

	c, rec := newRequestContext(http.MethodPost, "/api/creators", `{"name":"  Luna  ","description":"midnight streams","avatar_url":"https://cdn.example.com/luna.png"}`)
	require.NoError(t, service.CreateCreator(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	response := &CreatorResponse{}
	mustDecode(t, rec, response)
	require.NotEmpty(t, response.Creator.ID)
	require.Equal(t, "Luna", response.Creator.Name)
	require.Equal(t, "midnight streams", response.Creator.Description)
	require.True(t, response.Creator.Active)

	// Active can be set explicitly at creation.
	c, rec = newRequestContext(http.MethodPost, "/api/creators", `{"name":"Nova","active":false}`)
	require.NoError(t, service.CreateCreator(c))
	response = &CreatorResponse{}
	mustDecode(t, rec, response)
	require.False(t, response.Creator.Active)

	c, _ = newRequestContext(http.MethodPost, "/api/creators", `{"name":"   "}`)
	err := service.CreateCreator(c)
	require.Error(t, err)
	require.Equal(t, apierrors.CodeInvalidArgument, apierrors.CodeOf(err))
}

func TestListCreators(t *testing.T) {
	service, _ := newTestService(t)
	createTestCreator(t, service, "Ada")
	createTestCreator(t, service, "Bea")
	nova := createTestCreator(t, service, "Nova")

	c, rec := newRequestContext(http.MethodPatch, "/api/creators/"+nova.ID, `{"active":false}`)
	setCreatorPath(c, nova.ID)
	require.NoError(t, service.UpdateCreator(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// Inactive creators are hidden by default.
	c, rec = newRequestContext(http.MethodGet, "/api/creators", "")
	require.NoError(t, service.ListCreators(c))
	response := &ListCreatorsResponse{}
	mustDecode(t, rec, response)
	require.Len(t, response.Creators, 2)
	require.Equal(t, int64(2), response.Total)
	require.Equal(t, 1, response.Page)
	require.Equal(t, defaultPageSize, response.PageSize)
	require.Equal(t, "Ada", response.Creators[0].Name)
	require.Equal(t, "Bea", response.Creators[1].Name)

	c, rec = newRequestContext(http.MethodGet, "/api/creators?active_only=false", "")
	require.NoError(t, service.ListCreators(c))
	response = &ListCreatorsResponse{}
	mustDecode(t, rec, response)
	require.Len(t, response.Creators, 3)
	require.Equal(t, int64(3), response.Total)

	c, rec = newRequestContext(http.MethodGet, "/api/creators?page=2&page_size=1", "")
	require.NoError(t, service.ListCreators(c))
	response = &ListCreatorsResponse{}
	mustDecode(t, rec, response)
	require.Len(t, response.Creators, 1)
	require.Equal(t, "Bea", response.Creators[0].Name)
	require.Equal(t, int64(2), response.Total)
	require.Equal(t, 2, response.Page)
	require.Equal(t, 1, response.PageSize)

	// page_size is capped, invalid values fall back to the default.
	c, rec = newRequestContext(http.MethodGet, "/api/creators?page_size=5000", "")
	require.NoError(t, service.ListCreators(c))
	response = &ListCreatorsResponse{}
	mustDecode(t, rec, response)
	require.Equal(t, maxPageSize, response.PageSize)

	c, rec = newRequestContext(http.MethodGet, "/api/creators?page=abc&page_size=-1", "")
	require.NoError(t, service.ListCreators(c))
	response = &ListCreatorsResponse{}
	mustDecode(t, rec, response)
	require.Equal(t, 1, response.Page)
	require.Equal(t, defaultPageSize, response.PageSize)
}

func TestGetCreator(t *testing.T) {
	service, _ := newTestService(t)
	creator := createTestCreator(t, service, "Luna")

	// Bare creator: no style, no examples.
	c, rec := newRequestContext(http.MethodGet, "/api/creators/"+creator.ID, "")
	setCreatorPath(c, creator.ID)
	require.NoError(t, service.GetCreator(c))
	require.Equal(t, http.StatusOK, rec.Code)
	response := &CreatorResponse{}
	mustDecode(t, rec, response)
	require.Equal(t, creator.ID, response.Creator.ID)
	require.Nil(t, response.Creator.Style)
	require.Empty(t, response.Creator.Examples)

	c, _ = newRequestContext(http.MethodPatch, "/api/creators/"+creator.ID+"/style", `{"case_style":"lowercase"}`)
	setCreatorPath(c, creator.ID)
	require.NoError(t, service.UpsertCreatorStyle(c))
	for i := 0; i < 7; i++ {
		addTestExample(t, service, creator.ID, fmt.Sprintf("message %d", i))
	}

	// Detail embeds the style and only the most recent examples.
	c, rec = newRequestContext(http.MethodGet, "/api/creators/"+creator.ID, "")
	setCreatorPath(c, creator.ID)
	require.NoError(t, service.GetCreator(c))
	response = &CreatorResponse{}
	mustDecode(t, rec, response)
	require.NotNil(t, response.Creator.Style)
	require.Equal(t, "lowercase", response.Creator.Style.CaseStyle)
	require.Len(t, response.Creator.Examples, creatorDetailExampleLimit)
	require.Equal(t, "message 6", response.Creator.Examples[0].FanMessage)

	c, _ = newRequestContext(http.MethodGet, "/api/creators/"+unknownCreatorID, "")
	setCreatorPath(c, unknownCreatorID)
	err := service.GetCreator(c)
	require.Error(t, err)
	require.Equal(t, apierrors.CodeNotFound, apierrors.CodeOf(err))

	c, _ = newRequestContext(http.MethodGet, "/api/creators/not-a-uuid", "")
	setCreatorPath(c, "not-a-uuid")
	err = service.GetCreator(c)
	require.Error(t, err)
	require.Equal(t, apierrors.CodeInvalidArgument, apierrors.CodeOf(err))
}

func TestUpdateCreator(t *testing.T) {
	service, _ := newTestService(t)
	creator := createTestCreator(t, service, "Luna")

	c, rec := newRequestContext(http.MethodPatch, "/api/creators/"+creator.ID, `{"description":"midnight streams"}`)
	setCreatorPath(c, creator.ID)
	require.NoError(t, service.UpdateCreator(c))
	response := &CreatorResponse{}
	mustDecode(t, rec, response)
	require.Equal(t, "Luna", response.Creator.Name)
	require.Equal(t, "midnight streams", response.Creator.Description)

	// An empty body changes nothing.
	c, rec = newRequestContext(http.MethodPatch, "/api/creators/"+creator.ID, "")
	setCreatorPath(c, creator.ID)
	require.NoError(t, service.UpdateCreator(c))
	response = &CreatorResponse{}
	mustDecode(t, rec, response)
	require.Equal(t, "Luna", response.Creator.Name)
	require.Equal(t, "midnight streams", response.Creator.Description)

	c, _ = newRequestContext(http.MethodPatch, "/api/creators/"+creator.ID, `{"name":""}`)
	setCreatorPath(c, creator.ID)
	err := service.UpdateCreator(c)
	require.Error(t, err)
	require.Equal(t, apierrors.CodeInvalidArgument, apierrors.CodeOf(err))

	c, _ = newRequestContext(http.MethodPatch, "/api/creators/"+unknownCreatorID, `{"description":"x"}`)
	setCreatorPath(c, unknownCreatorID)
	err = service.UpdateCreator(c)
	require.Error(t, err)
	require.Equal(t, apierrors.CodeNotFound, apierrors.CodeOf(err))
}

func TestUpsertCreatorStyle(t *testing.T) {
	service, _ := newTestService(t)
	creator := createTestCreator(t, service, "Luna")

	c, rec := newRequestContext(http.MethodPatch, "/api/creators/"+creator.ID+"/style",
		`{"case_style":"lowercase","approved_emojis":["😅","💕"],"text_replacements":{"you":"u"}}`)
	setCreatorPath(c, creator.ID)
	require.NoError(t, service.UpsertCreatorStyle(c))
	require.Equal(t, http.StatusOK, rec.Code)
	response := &CreatorStyleResponse{}
	mustDecode(t, rec, response)
	require.Equal(t, "lowercase", response.Style.CaseStyle)
	require.Equal(t, []string{"😅", "💕"}, response.Style.ApprovedEmojis)
	require.Equal(t, map[string]string{"you": "u"}, response.Style.TextReplacements)

	// A later patch merges into the stored style.
	c, rec = newRequestContext(http.MethodPatch, "/api/creators/"+creator.ID+"/style", `{"style_instructions":"keep it playful"}`)
	setCreatorPath(c, creator.ID)
	require.NoError(t, service.UpsertCreatorStyle(c))
	response = &CreatorStyleResponse{}
	mustDecode(t, rec, response)
	require.Equal(t, "keep it playful", response.Style.StyleInstructions)
	require.Equal(t, "lowercase", response.Style.CaseStyle)
	require.Equal(t, []string{"😅", "💕"}, response.Style.ApprovedEmojis)

	// An explicit empty list clears the stored one.
	c, rec = newRequestContext(http.MethodPatch, "/api/creators/"+creator.ID+"/style", `{"approved_emojis":[]}`)
	setCreatorPath(c, creator.ID)
	require.NoError(t, service.UpsertCreatorStyle(c))
	response = &CreatorStyleResponse{}
	mustDecode(t, rec, response)
	require.Empty(t, response.Style.ApprovedEmojis)
	require.Equal(t, "lowercase", response.Style.CaseStyle)

	c, _ = newRequestContext(http.MethodPatch, "/api/creators/"+unknownCreatorID+"/style", `{"case_style":"lowercase"}`)
	setCreatorPath(c, unknownCreatorID)
	err := service.UpsertCreatorStyle(c)
	require.Error(t, err)
	require.Equal(t, apierrors.CodeNotFound, apierrors.CodeOf(err))
}

func TestAddStyleExample(t *testing.T) {
	service, _ := newTestService(t)
	creator := createTestCreator(t, service, "Luna")

	example := addTestExample(t, service, creator.ID, "hey, how was your day?")
	require.NotEmpty(t, example.ID)
	require.Equal(t, creator.ID, example.CreatorID)
	require.Equal(t, "hey, how was your day?", example.FanMessage)
	require.Equal(t, []string{"hey you 💕"}, example.CreatorResponses)

	tests := []struct {
		name         string
		creatorID    string
		body         string
		expectedCode apierrors.Code
	}{
		{"missing fan_message", creator.ID, `{"creator_responses":["hi"]}`, apierrors.CodeInvalidArgument},
		{"empty creator_responses", creator.ID, `{"fan_message":"hi","creator_responses":[]}`, apierrors.CodeInvalidArgument},
		{"missing creator_responses", creator.ID, `{"fan_message":"hi"}`, apierrors.CodeInvalidArgument},
		{"unknown creator", unknownCreatorID, `{"fan_message":"hi","creator_responses":["hey"]}`, apierrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newRequestContext(http.MethodPost, "/api/creators/"+tt.creatorID+"/examples", tt.body)
			setCreatorPath(c, tt.creatorID)
			err := service.AddStyleExample(c)
			require.Error(t, err)
			require.Equal(t, tt.expectedCode, apierrors.CodeOf(err))
		})
	}
}

func TestListStyleExamples(t *testing.T) {
	service, driver := newTestService(t)

	var clock int64 = 1000
	driver.Now = func() int64 {
		clock++
		return clock
	}
	creator := createTestCreator(t, service, "Luna")
	for i := 0; i < 3; i++ {
		addTestExample(t, service, creator.ID, fmt.Sprintf("message %d", i))
	}

	c, rec := newRequestContext(http.MethodGet, "/api/creators/"+creator.ID+"/examples", "")
	setCreatorPath(c, creator.ID)
	require.NoError(t, service.ListStyleExamples(c))
	response := &ListStyleExamplesResponse{}
	mustDecode(t, rec, response)
	require.Len(t, response.Examples, 3)
	require.Equal(t, "message 2", response.Examples[0].FanMessage)
	require.Equal(t, "message 0", response.Examples[2].FanMessage)

	c, rec = newRequestContext(http.MethodGet, "/api/creators/"+creator.ID+"/examples?page=2&page_size=2", "")
	setCreatorPath(c, creator.ID)
	require.NoError(t, service.ListStyleExamples(c))
	response = &ListStyleExamplesResponse{}
	mustDecode(t, rec, response)
	require.Len(t, response.Examples, 1)
	require.Equal(t, "message 0", response.Examples[0].FanMessage)
}

func TestDeleteStyleExample(t *testing.T) {
	service, _ := newTestService(t)
	luna := createTestCreator(t, service, "Luna")
	nova := createTestCreator(t, service, "Nova")
	example := addTestExample(t, service, luna.ID, "hi")

	// An example cannot be deleted through another creator's route.
	c, _ := newRequestContext(http.MethodDelete, "/api/creators/"+nova.ID+"/examples/"+example.ID, "")
	c.SetParamNames("id", "exampleId")
	c.SetParamValues(nova.ID, example.ID)
	err := service.DeleteStyleExample(c)
	require.Error(t, err)
	require.Equal(t, apierrors.CodeNotFound, apierrors.CodeOf(err))

	c, rec := newRequestContext(http.MethodDelete, "/api/creators/"+luna.ID+"/examples/"+example.ID, "")
	c.SetParamNames("id", "exampleId")
	c.SetParamValues(luna.ID, example.ID)
	require.NoError(t, service.DeleteStyleExample(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Deleting again reports it gone.
	c, _ = newRequestContext(http.MethodDelete, "/api/creators/"+luna.ID+"/examples/"+example.ID, "")
	c.SetParamNames("id", "exampleId")
	c.SetParamValues(luna.ID, example.ID)
	err = service.DeleteStyleExample(c)
	require.Error(t, err)
	require.Equal(t, apierrors.CodeNotFound, apierrors.CodeOf(err))

	c, _ = newRequestContext(http.MethodDelete, "/api/creators/"+luna.ID+"/examples/not-a-uuid", "")
	c.SetParamNames("id", "exampleId")
	c.SetParamValues(luna.ID, "not-a-uuid")
	err = service.DeleteStyleExample(c)
	require.Error(t, err)
	require.Equal(t, apierrors.CodeInvalidArgument, apierrors.CodeOf(err))
}

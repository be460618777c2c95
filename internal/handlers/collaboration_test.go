package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/dimitrije/lessonforge-api/internal/logger"
	"github.com/dimitrije/lessonforge-api/internal/middleware"
	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/dimitrije/lessonforge-api/internal/services"
	"github.com/dimitrije/lessonforge-api/internal/testutil"
	"github.com/dimitrije/lessonforge-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type collaborationTest struct {
	collabs *testutil.MockCollaborationService
	users   *testutil.MockUserService
	content *testutil.MockContentService
	hub     *testutil.MockSSEHub
	email   *testutil.MockEmailService
	client  *testutil.HTTPTestClient

	userID   uuid.UUID
	tenantID uuid.UUID
}

func setupCollaborationTest(t *testing.T) *collaborationTest {
	t.Helper()
	ct := &collaborationTest{
		collabs:  new(testutil.MockCollaborationService),
		users:    new(testutil.MockUserService),
		content:  new(testutil.MockContentService),
		hub:      new(testutil.MockSSEHub),
		email:    new(testutil.MockEmailService),
		userID:   uuid.New(),
		tenantID: uuid.New(),
	}
	handler := NewCollaborationHandler(ct.collabs, ct.users, ct.content, ct.hub, ct.email, "http://lessonforge.test", logger.Nop())
	jwtSvc := testutil.TestJWTService()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/collaborations", handler.Create)
	app.Get("/collaborations", handler.List)
	app.Get("/invitations", handler.ListInvitations)
	app.Get("/content/:contentType/:contentId/collaboration", handler.GetByContent)
	app.Get("/collaborations/:id", handler.Get)
	app.Delete("/collaborations/:id", handler.Delete)
	app.Patch("/collaborations/:id/settings", handler.UpdateSettings)
	app.Patch("/collaborations/:id/status", handler.SetStatus)
	app.Post("/collaborations/:id/members", handler.AddMember)
	app.Delete("/collaborations/:id/members/:userId", handler.RemoveMember)
	app.Post("/collaborations/:id/invitation/accept", handler.AcceptInvitation)
	app.Post("/collaborations/:id/invitation/decline", handler.DeclineInvitation)
	app.Post("/collaborations/:id/comments", handler.AddComment)
	app.Post("/collaborations/:id/comments/:commentRef/replies", handler.AddReply)
	app.Post("/collaborations/:id/comments/:commentRef/resolve", handler.ResolveComment)
	app.Post("/collaborations/:id/tasks", handler.AddTask)
	app.Patch("/collaborations/:id/tasks/:taskRef", handler.UpdateTask)
	app.Post("/collaborations/:id/versions", handler.CreateVersion)
	app.Get("/collaborations/:id/versions", handler.ListVersions)
	app.Get("/collaborations/:id/versions/:number", handler.GetVersion)
	app.Get("/collaborations/:id/timeline", handler.Timeline)

	token := testutil.GenerateTestToken(t, jwtSvc, ct.userID, ct.tenantID)
	ct.client = testutil.NewHTTPTestClient(t, app).As(token)
	return ct
}

func (ct *collaborationTest) collaboration() *models.Collaboration {
	c := models.NewCollaboration(ct.tenantID, uuid.New(), models.ContentTypeCourse, ct.userID)
	c.Revision = 2
	return c
}

func (ct *collaborationTest) allowDirectory(users ...models.User) {
	found := map[uuid.UUID]models.User{}
	for _, u := range users {
		found[u.ID] = u
	}
	ct.users.On("GetByIDs", mock.Anything, ct.tenantID, mock.Anything).Return(found, nil)
}

func (ct *collaborationTest) allowBroadcast() {
	ct.hub.On("BroadcastTimelineEntry", mock.Anything).Return()
}

func (ct *collaborationTest) assertExpectations(t *testing.T) {
	ct.collabs.AssertExpectations(t)
	ct.users.AssertExpectations(t)
	ct.hub.AssertExpectations(t)
	ct.email.AssertExpectations(t)
}

func TestCollaborationHandler_Create_Success(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()
	owner := models.User{ID: ct.userID, Name: "Ada", Email: "ada@example.com"}

	ct.collabs.On("Create", mock.Anything, ct.tenantID, ct.userID, models.ContentTypeCourse, collab.ContentID, "First draft").
		Return(collab, nil)
	ct.allowDirectory(owner)

	rec := ct.client.POST("/collaborations", dto.CreateCollaborationRequest{
		ContentID:   collab.ContentID,
		ContentType: "Course",
		Changes:     "First draft",
	}, nil)

	testutil.AssertStatus(t, rec, http.StatusCreated)

	var response dto.CollaborationResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, collab.ID, response.ID)
	assert.Equal(t, 2, response.Revision)
	require.NotNil(t, response.Owner)
	assert.Equal(t, "Ada", response.Owner.Name)

	ct.assertExpectations(t)
}

func TestCollaborationHandler_Create_Validation(t *testing.T) {
	ct := setupCollaborationTest(t)

	rec := ct.client.POST("/collaborations", dto.CreateCollaborationRequest{
		ContentID:   uuid.New(),
		ContentType: "Podcast",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "content_type must be one of")
	ct.collabs.AssertNotCalled(t, "Create")
}

func TestCollaborationHandler_Create_Conflict(t *testing.T) {
	ct := setupCollaborationTest(t)
	contentID := uuid.New()

	ct.collabs.On("Create", mock.Anything, ct.tenantID, ct.userID, models.ContentTypeQuiz, contentID, "").
		Return(nil, models.ErrCollaborationExists)

	rec := ct.client.POST("/collaborations", dto.CreateCollaborationRequest{
		ContentID:   contentID,
		ContentType: "Quiz",
	}, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "CONFLICT")
	ct.assertExpectations(t)
}

func TestCollaborationHandler_Unauthenticated(t *testing.T) {
	ct := setupCollaborationTest(t)

	rec := ct.client.GET("/collaborations", map[string]string{"Authorization": ""})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	ct.collabs.AssertNotCalled(t, "ListForUser")
}

func TestCollaborationHandler_Get_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", models.ErrCollaborationNotFound, http.StatusNotFound},
		{"not a participant", models.ErrPermissionDenied, http.StatusForbidden},
		{"storage failure", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := setupCollaborationTest(t)
			id := uuid.New()
			ct.collabs.On("Get", mock.Anything, ct.tenantID, id, ct.userID).Return(nil, tt.err)

			rec := ct.client.GET("/collaborations/"+id.String(), nil)

			assert.Equal(t, tt.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), "connection reset")
			ct.assertExpectations(t)
		})
	}
}

func TestCollaborationHandler_Get_InvalidID(t *testing.T) {
	ct := setupCollaborationTest(t)

	rec := ct.client.GET("/collaborations/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid collaboration id")
}

func TestCollaborationHandler_Get_DirectoryFailureStillAnswers(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()

	ct.collabs.On("Get", mock.Anything, ct.tenantID, collab.ID, ct.userID).Return(collab, nil)
	ct.users.On("GetByIDs", mock.Anything, ct.tenantID, mock.Anything).Return(nil, errors.New("directory down"))

	rec := ct.client.GET("/collaborations/"+collab.ID.String(), nil)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var response dto.CollaborationResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Nil(t, response.Owner)
}

func TestCollaborationHandler_GetByContent(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()

	ct.collabs.On("GetByContent", mock.Anything, ct.tenantID, ct.userID, models.ContentTypeCourse, collab.ContentID).
		Return(collab, nil)
	ct.allowDirectory()

	rec := ct.client.GET("/content/Course/"+collab.ContentID.String()+"/collaboration", nil)
	testutil.AssertStatus(t, rec, http.StatusOK)

	rec = ct.client.GET("/content/Podcast/"+collab.ContentID.String()+"/collaboration", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ct.assertExpectations(t)
}

func TestCollaborationHandler_List(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()
	collab.Tasks = []models.Task{{Status: models.TaskTodo}, {Status: models.TaskCompleted}}

	ct.collabs.On("ListForUser", mock.Anything, ct.tenantID, ct.userID).Return([]models.Collaboration{*collab}, nil)

	rec := ct.client.GET("/collaborations", nil)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var response []dto.CollaborationSummary
	testutil.ParseJSON(t, rec, &response)
	require.Len(t, response, 1)
	assert.Equal(t, 1, response[0].OpenTasks)
	ct.assertExpectations(t)
}

func TestCollaborationHandler_ListInvitations(t *testing.T) {
	ct := setupCollaborationTest(t)

	ct.collabs.On("ListInvitations", mock.Anything, ct.tenantID, ct.userID).Return([]models.Collaboration{}, nil)

	rec := ct.client.GET("/invitations", nil)

	testutil.AssertStatus(t, rec, http.StatusOK)
	assert.JSONEq(t, "[]", rec.Body.String())
	ct.assertExpectations(t)
}

func TestCollaborationHandler_AddMember(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()
	inviteeID := uuid.New()
	member, err := collab.AddMember(ct.userID, inviteeID, models.RoleEditor, nil)
	require.NoError(t, err)

	ct.collabs.On("AddMember", mock.Anything, ct.tenantID, collab.ID, ct.userID, inviteeID, models.RoleEditor, (*models.PermissionOverrides)(nil)).
		Return(collab, member, nil)
	ct.allowBroadcast()
	ct.hub.On("Drop", collab.ID, inviteeID).Return()
	ct.hub.On("NotifyInvitation", collab, member, ct.userID).Return()
	ct.email.On("IsConfigured").Return(false)
	ct.allowDirectory(models.User{ID: inviteeID, Name: "Grace"})

	rec := ct.client.POST("/collaborations/"+collab.ID.String()+"/members", dto.AddMemberRequest{
		UserID: inviteeID,
		Role:   "editor",
	}, nil)

	testutil.AssertStatus(t, rec, http.StatusCreated)
	var response dto.MemberResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, inviteeID, response.UserID)
	assert.Equal(t, models.MemberInvited, response.Status)
	require.NotNil(t, response.User)
	assert.Equal(t, "Grace", response.User.Name)

	ct.assertExpectations(t)
}

func TestCollaborationHandler_AddMember_SendsInviteEmail(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()
	inviteeID := uuid.New()
	member, err := collab.AddMember(ct.userID, inviteeID, models.RoleReviewer, nil)
	require.NoError(t, err)

	ct.collabs.On("AddMember", mock.Anything, ct.tenantID, collab.ID, ct.userID, inviteeID, models.RoleReviewer, mock.Anything).
		Return(collab, member, nil)
	ct.allowBroadcast()
	ct.hub.On("Drop", collab.ID, inviteeID).Return()
	ct.hub.On("NotifyInvitation", collab, member, ct.userID).Return()
	ct.email.On("IsConfigured").Return(true)
	ct.allowDirectory(
		models.User{ID: inviteeID, Name: "Grace", Email: "grace@example.com"},
		models.User{ID: ct.userID, Name: "Ada", Email: "ada@example.com"},
	)
	ct.content.On("FindByID", mock.Anything, ct.tenantID, models.ContentTypeCourse, collab.ContentID).
		Return(&models.ContentItem{Title: "Intro to Go"}, nil)
	ct.email.On("SendCollaborationInvite", "grace@example.com", "Ada", "Intro to Go", "reviewer",
		"http://lessonforge.test/api/v1/collaborations/"+collab.ID.String()).Return(nil)

	rec := ct.client.POST("/collaborations/"+collab.ID.String()+"/members", map[string]any{
		"user_id": inviteeID,
		"role":    "reviewer",
	}, nil)

	testutil.AssertStatus(t, rec, http.StatusCreated)
	ct.assertExpectations(t)
}

func TestCollaborationHandler_AddMember_ReinviteDropsStreams(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()
	memberID := uuid.New()
	_, err := collab.AddMember(ct.userID, memberID, models.RoleEditor, nil)
	require.NoError(t, err)
	require.NoError(t, collab.AcceptInvitation(memberID))
	require.True(t, collab.IsParticipant(memberID))

	member, err := collab.AddMember(ct.userID, memberID, models.RoleReviewer, nil)
	require.NoError(t, err)
	require.False(t, collab.IsParticipant(memberID))

	ct.collabs.On("AddMember", mock.Anything, ct.tenantID, collab.ID, ct.userID, memberID, models.RoleReviewer, mock.Anything).
		Return(collab, member, nil)
	ct.allowBroadcast()
	ct.hub.On("Drop", collab.ID, memberID).Return()
	ct.hub.On("NotifyInvitation", collab, member, ct.userID).Return()
	ct.email.On("IsConfigured").Return(false)
	ct.allowDirectory(models.User{ID: memberID, Name: "Grace"})

	rec := ct.client.POST("/collaborations/"+collab.ID.String()+"/members", dto.AddMemberRequest{
		UserID: memberID,
		Role:   "reviewer",
	}, nil)

	testutil.AssertStatus(t, rec, http.StatusCreated)
	ct.hub.AssertCalled(t, "Drop", collab.ID, memberID)
	ct.assertExpectations(t)
}

func TestCollaborationHandler_AddMember_BadRole(t *testing.T) {
	ct := setupCollaborationTest(t)

	rec := ct.client.POST("/collaborations/"+uuid.NewString()+"/members", map[string]any{
		"user_id": uuid.New(),
		"role":    "owner",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "role must be one of editor, reviewer, commenter")
}

func TestCollaborationHandler_RevisionConflict(t *testing.T) {
	ct := setupCollaborationTest(t)
	id := uuid.New()

	ct.collabs.On("AddComment", mock.Anything, ct.tenantID, id, ct.userID, "looks good", mock.Anything).
		Return(nil, nil, &models.RevisionConflictError{Current: 9})

	rec := ct.client.POST("/collaborations/"+id.String()+"/comments", dto.AddCommentRequest{Text: "looks good"}, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var response dto.RevisionConflictResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, "REVISION_CONFLICT", response.Code)
	assert.Equal(t, 9, response.CurrentRevision)
	ct.hub.AssertNotCalled(t, "BroadcastTimelineEntry", mock.Anything)
}

func TestCollaborationHandler_AddComment_QuietWhenNotifyOff(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()
	collab.Settings.NotifyOnChanges = false
	comment, err := collab.AddComment(ct.userID, "quiet", nil)
	require.NoError(t, err)

	ct.collabs.On("AddComment", mock.Anything, ct.tenantID, collab.ID, ct.userID, "quiet", mock.Anything).
		Return(collab, comment, nil)

	rec := ct.client.POST("/collaborations/"+collab.ID.String()+"/comments", dto.AddCommentRequest{Text: "quiet"}, nil)

	testutil.AssertStatus(t, rec, http.StatusCreated)
	ct.hub.AssertNotCalled(t, "BroadcastTimelineEntry", mock.Anything)
}

func TestCollaborationHandler_AddReply_ByIndex(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()
	comment, err := collab.AddComment(ct.userID, "first", nil)
	require.NoError(t, err)
	reply, err := collab.AddReply(ct.userID, comment.ID, "answer")
	require.NoError(t, err)

	ct.collabs.On("AddReply", mock.Anything, ct.tenantID, collab.ID, ct.userID, "0", "answer").
		Return(collab, reply, nil)
	ct.allowBroadcast()

	rec := ct.client.POST("/collaborations/"+collab.ID.String()+"/comments/0/replies", dto.AddReplyRequest{Text: "answer"}, nil)

	testutil.AssertStatus(t, rec, http.StatusCreated)
	ct.assertExpectations(t)
}

func TestCollaborationHandler_ResolveComment_NotFound(t *testing.T) {
	ct := setupCollaborationTest(t)
	id := uuid.New()

	ct.collabs.On("ResolveComment", mock.Anything, ct.tenantID, id, ct.userID, "7").
		Return(nil, nil, models.ErrCommentNotFound)

	rec := ct.client.POST("/collaborations/"+id.String()+"/comments/7/resolve", nil, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "comment not found")
}

func TestCollaborationHandler_AddTask(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()
	task, err := collab.AddTask(ct.userID, "Record intro", "", ct.userID, models.PriorityHigh, nil)
	require.NoError(t, err)

	ct.collabs.On("AddTask", mock.Anything, ct.tenantID, collab.ID, ct.userID, services.NewTask{
		Title:      "Record intro",
		AssignedTo: ct.userID,
		Priority:   models.PriorityHigh,
	}).Return(collab, task, nil)
	ct.allowBroadcast()

	rec := ct.client.POST("/collaborations/"+collab.ID.String()+"/tasks", dto.CreateTaskRequest{
		Title:      "Record intro",
		AssignedTo: ct.userID,
		Priority:   "high",
	}, nil)

	testutil.AssertStatus(t, rec, http.StatusCreated)
	ct.assertExpectations(t)
}

func TestCollaborationHandler_UpdateTask(t *testing.T) {
	assignee := uuid.New()

	tests := []struct {
		name   string
		body   map[string]any
		update models.TaskUpdate
	}{
		{"status", map[string]any{"type": "status", "status": "completed"}, models.StatusChange{Status: models.TaskCompleted}},
		{"priority", map[string]any{"type": "priority", "priority": "urgent"}, models.PriorityChange{Priority: models.PriorityUrgent}},
		{"clear due date", map[string]any{"type": "reschedule"}, models.Reschedule{}},
		{"reassign", map[string]any{"type": "reassign", "assigned_to": assignee}, models.Reassign{AssignedTo: assignee}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := setupCollaborationTest(t)
			collab := ct.collaboration()
			task := &models.Task{ID: uuid.New()}

			ct.collabs.On("UpdateTask", mock.Anything, ct.tenantID, collab.ID, ct.userID, task.ID.String(), tt.update).
				Return(collab, task, nil)
			ct.allowBroadcast()

			rec := ct.client.PATCH("/collaborations/"+collab.ID.String()+"/tasks/"+task.ID.String(), tt.body, nil)

			testutil.AssertStatus(t, rec, http.StatusOK)
			ct.assertExpectations(t)
		})
	}
}

func TestCollaborationHandler_UpdateTask_Rejected(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"unknown type", map[string]any{"type": "rename"}},
		{"missing status", map[string]any{"type": "status"}},
		{"bad priority", map[string]any{"type": "priority", "priority": "whenever"}},
		{"reassign without assignee", map[string]any{"type": "reassign"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := setupCollaborationTest(t)

			rec := ct.client.PATCH("/collaborations/"+uuid.NewString()+"/tasks/0", tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			ct.collabs.AssertNotCalled(t, "UpdateTask")
		})
	}
}

func TestCollaborationHandler_AcceptInvitation_NotPending(t *testing.T) {
	ct := setupCollaborationTest(t)
	id := uuid.New()

	ct.collabs.On("AcceptInvitation", mock.Anything, ct.tenantID, id, ct.userID).
		Return(nil, models.ErrInvitationNotPending)

	rec := ct.client.POST("/collaborations/"+id.String()+"/invitation/accept", nil, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_STATE")
}

func TestCollaborationHandler_DeclineInvitation(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()

	ct.collabs.On("DeclineInvitation", mock.Anything, ct.tenantID, collab.ID, ct.userID).Return(collab, nil)
	ct.allowBroadcast()

	rec := ct.client.POST("/collaborations/"+collab.ID.String()+"/invitation/decline", nil, nil)

	testutil.AssertStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "invitation declined")
	ct.assertExpectations(t)
}

func TestCollaborationHandler_RemoveMember_DropsSubscriptions(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()
	memberID := uuid.New()

	ct.collabs.On("RemoveMember", mock.Anything, ct.tenantID, collab.ID, ct.userID, memberID).Return(collab, nil)
	ct.hub.On("Drop", collab.ID, memberID).Return()
	ct.allowBroadcast()

	rec := ct.client.DELETE("/collaborations/"+collab.ID.String()+"/members/"+memberID.String(), nil)

	testutil.AssertStatus(t, rec, http.StatusOK)
	ct.assertExpectations(t)
}

func TestCollaborationHandler_Delete(t *testing.T) {
	ct := setupCollaborationTest(t)
	id := uuid.New()

	ct.collabs.On("Delete", mock.Anything, ct.tenantID, id, ct.userID).Return(nil)
	ct.hub.On("Drop", id, uuid.Nil).Return()

	rec := ct.client.DELETE("/collaborations/"+id.String(), nil)

	testutil.AssertStatus(t, rec, http.StatusOK)
	ct.assertExpectations(t)
}

func TestCollaborationHandler_Delete_NotOwner(t *testing.T) {
	ct := setupCollaborationTest(t)
	id := uuid.New()

	ct.collabs.On("Delete", mock.Anything, ct.tenantID, id, ct.userID).Return(models.ErrPermissionDenied)

	rec := ct.client.DELETE("/collaborations/"+id.String(), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	ct.hub.AssertNotCalled(t, "Drop", mock.Anything, mock.Anything)
}

func TestCollaborationHandler_UpdateSettingsAndStatus(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()
	off := false

	ct.collabs.On("UpdateSettings", mock.Anything, ct.tenantID, collab.ID, ct.userID, models.SettingsUpdate{AllowInvites: &off}).
		Return(collab, nil)
	ct.collabs.On("SetStatus", mock.Anything, ct.tenantID, collab.ID, ct.userID, models.CollaborationPaused).
		Return(collab, nil)
	ct.allowBroadcast()
	ct.allowDirectory()

	rec := ct.client.PATCH("/collaborations/"+collab.ID.String()+"/settings", map[string]any{"allow_invites": false}, nil)
	testutil.AssertStatus(t, rec, http.StatusOK)

	rec = ct.client.PATCH("/collaborations/"+collab.ID.String()+"/status", dto.UpdateStatusRequest{Status: "paused"}, nil)
	testutil.AssertStatus(t, rec, http.StatusOK)

	rec = ct.client.PATCH("/collaborations/"+collab.ID.String()+"/status", dto.UpdateStatusRequest{Status: "archived"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ct.assertExpectations(t)
}

func TestCollaborationHandler_Versions(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()
	version := &models.Version{ID: uuid.New(), VersionNumber: 2, Changes: "Polish"}

	ct.collabs.On("CreateVersion", mock.Anything, ct.tenantID, collab.ID, ct.userID, "Polish").Return(collab, version, nil)
	ct.collabs.On("Versions", mock.Anything, ct.tenantID, collab.ID, ct.userID).Return([]models.Version{*version}, nil)
	ct.collabs.On("GetVersion", mock.Anything, ct.tenantID, collab.ID, ct.userID, 2).Return(version, nil)
	ct.collabs.On("GetVersion", mock.Anything, ct.tenantID, collab.ID, ct.userID, 5).Return(nil, models.ErrVersionNotFound)
	ct.allowBroadcast()

	base := "/collaborations/" + collab.ID.String() + "/versions"

	rec := ct.client.POST(base, dto.CreateVersionRequest{Changes: "Polish"}, nil)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	rec = ct.client.GET(base, nil)
	testutil.AssertStatus(t, rec, http.StatusOK)

	rec = ct.client.GET(base+"/2", nil)
	testutil.AssertStatus(t, rec, http.StatusOK)

	rec = ct.client.GET(base+"/5", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ct.client.GET(base+"/latest", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ct.assertExpectations(t)
}

func TestCollaborationHandler_CreateVersion_Denied(t *testing.T) {
	ct := setupCollaborationTest(t)
	id := uuid.New()

	ct.collabs.On("CreateVersion", mock.Anything, ct.tenantID, id, ct.userID, "").Return(nil, nil, models.ErrPermissionDenied)

	rec := ct.client.POST("/collaborations/"+id.String()+"/versions", dto.CreateVersionRequest{}, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCollaborationHandler_Timeline(t *testing.T) {
	ct := setupCollaborationTest(t)
	collab := ct.collaboration()

	ct.collabs.On("Timeline", mock.Anything, ct.tenantID, collab.ID, ct.userID).Return(collab.Timeline, nil)

	rec := ct.client.GET("/collaborations/"+collab.ID.String()+"/timeline", nil)

	testutil.AssertStatus(t, rec, http.StatusOK)
	assert.True(t, strings.Contains(rec.Body.String(), models.ActionCollaborationCreated))
	ct.assertExpectations(t)
}

package server

import (
	"karmafeed/internal/models"
	"karmafeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// commentRequest accepts both the short ("post", "parent") and the
// explicit ("post_id", "parent_id") field names.
type commentRequest struct {
	Post     *uint  `json:"post"`
	PostID   *uint  `json:"post_id"`
	Parent   *uint  `json:"parent"`
	ParentID *uint  `json:"parent_id"`
	Content  string `json:"content"`
}

func (r commentRequest) postID() uint {
	switch {
	case r.PostID != nil:
		return *r.PostID
	case r.Post != nil:
		return *r.Post
	default:
		return 0
	}
}

func (r commentRequest) parentID() *uint {
	if r.ParentID != nil {
		return r.ParentID
	}
	return r.Parent
}

// CreateComment handles POST /api/comments
// @Summary Create comment
// @Description Top-level comment, or a reply when parent is set
// @Tags comments
// @Accept json
// @Produce json
// @Param request body object{post=int,parent=int,content=string} true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	postID := req.postID()
	if postID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Post is required"))
	}

	return s.createComment(c, postID, req)
}

// CreatePostComment handles POST /api/posts/:id/comments
// @Summary Comment on post
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{parent=int,content=string} true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/comments [post]
func (s *Server) CreatePostComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	return s.createComment(c, postID, req)
}

func (s *Server) createComment(c *fiber.Ctx, postID uint, req commentRequest) error {
	userID := c.Locals("userID").(uint)

	parentID := req.parentID()
	if parentID != nil && *parentID == 0 {
		parentID = nil
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   userID,
		PostID:   postID,
		ParentID: parentID,
		Content:  req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComment handles GET /api/comments/:id
// @Summary Get comment
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{id} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.GetComment(c.UserContext(), commentID, viewerID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(comment)
}

// LikeComment handles POST /api/comments/:id/like and toggles the caller's like.
// @Summary Toggle comment like
// @Description Likes the comment, or removes the caller's existing like
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} models.LikeToggleResult
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{id}/like [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.likeService.ToggleCommentLike(c.UserContext(), userID, commentID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}

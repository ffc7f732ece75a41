package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-collector/middleware"
	"github.com/vnkhanh/survey-collector/models"
	"github.com/vnkhanh/survey-collector/services"
)

const (
	newSurveySlots   = 5
	maxFormQuestions = 50
)

// PageController phục vụ các trang HTML; token đăng nhập nằm trong cookie.
type PageController struct {
	auth         *services.AuthService
	surveys      *services.SurveyService
	responses    *services.ResponseService
	cookieSecure bool
}

func NewPageController(auth *services.AuthService, surveys *services.SurveyService, responses *services.ResponseService, cookieSecure bool) *PageController {
	return &PageController{auth: auth, surveys: surveys, responses: responses, cookieSecure: cookieSecure}
}

func (h *PageController) render(c *gin.Context, status int, name string, data gin.H) {
	if u, ok := middleware.CurrentUser(c); ok {
		data["User"] = &u
	}
	c.HTML(status, name, data)
}

func (h *PageController) serverError(c *gin.Context, err error) {
	log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	h.render(c, http.StatusInternalServerError, "not_found.html", gin.H{
		"Title": "Lỗi", "Error": "Lỗi máy chủ, vui lòng thử lại sau",
	})
}

/* ========== Trang chủ ========== */

func (h *PageController) Home(c *gin.Context) {
	ctx := c.Request.Context()
	owned, err := h.surveys.List(ctx, middleware.CurrentUserID(c))
	if err != nil {
		h.serverError(c, err)
		return
	}
	public, err := h.surveys.ListPublic(ctx)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "home.html", gin.H{"Owned": owned, "Public": public})
}

func (h *PageController) PublicSurveys(c *gin.Context) {
	surveys, err := h.surveys.ListPublic(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "public_surveys.html", gin.H{"Title": "Khảo sát công khai", "Surveys": surveys})
}

/* ========== Tài khoản ========== */

func (h *PageController) RegisterForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Đăng ký"})
}

func (h *PageController) Register(c *gin.Context) {
	req := services.RegisterRequest{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}
	data := gin.H{"Title": "Đăng ký", "Username": req.Username, "Email": req.Email}

	if req.Password != c.PostForm("password2") {
		data["Errors"] = services.ValidationErrors{{Field: "password2", Rule: "mismatch", Message: "passwords do not match"}}
		h.render(c, http.StatusBadRequest, "register.html", data)
		return
	}

	if _, err := h.auth.Register(c.Request.Context(), req); err != nil {
		if ve, ok := services.AsValidationErrors(err); ok {
			data["Errors"] = ve
		} else if errors.Is(err, services.ErrUsernameTaken) {
			data["Error"] = "Username đã tồn tại"
		} else {
			h.serverError(c, err)
			return
		}
		h.render(c, http.StatusBadRequest, "register.html", data)
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *PageController) LoginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Đăng nhập", "Next": c.Query("next")})
}

func (h *PageController) Login(c *gin.Context) {
	req := services.LoginRequest{Username: c.PostForm("username"), Password: c.PostForm("password")}
	next := c.PostForm("next")

	user, err := h.auth.Authenticate(c.Request.Context(), req)
	if err != nil {
		if _, ok := services.AsValidationErrors(err); !ok && !errors.Is(err, services.ErrInvalidCredentials) {
			h.serverError(c, err)
			return
		}
		h.render(c, http.StatusUnauthorized, "login.html", gin.H{
			"Title": "Đăng nhập", "Next": next, "Username": req.Username,
			"Error": "Sai username hoặc mật khẩu",
		})
		return
	}

	pair, err := h.auth.IssueTokens(user)
	if err != nil {
		h.serverError(c, err)
		return
	}
	middleware.SetAuthCookie(c, pair.Access, h.cookieSecure)
	c.Redirect(http.StatusFound, safeNext(next))
}

// safeNext chỉ cho redirect về đường dẫn nội bộ.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (h *PageController) Logout(c *gin.Context) {
	middleware.ClearAuthCookie(c, h.cookieSecure)
	c.Redirect(http.StatusFound, "/")
}

func (h *PageController) Profile(c *gin.Context) {
	owned, err := h.surveys.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "profile.html", gin.H{"Title": "Hồ sơ", "Owned": owned})
}

/* ========== Tạo / sửa survey ========== */

func (h *PageController) NewSurveyForm(c *gin.Context) {
	h.render(c, http.StatusOK, "survey_new.html", gin.H{
		"Title": "Tạo khảo sát",
		"Form":  services.CreateSurveyRequest{Status: models.SurveyStatusActive},
		"Slots": newSurveySlots,
	})
}

func (h *PageController) CreateSurvey(c *gin.Context) {
	req := parseSurveyForm(c)
	survey, err := h.surveys.Create(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		ve, ok := services.AsValidationErrors(err)
		if !ok {
			h.serverError(c, err)
			return
		}
		slots := len(req.Questions)
		if slots < newSurveySlots {
			slots = newSurveySlots
		}
		h.render(c, http.StatusBadRequest, "survey_new.html", gin.H{
			"Title": "Tạo khảo sát", "Form": req, "Slots": slots, "Errors": ve,
		})
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/surveys/edit/%d", survey.ID))
}

// parseSurveyForm đọc các ô questions-<i>-*; ô câu hỏi để trống thì bỏ qua.
func parseSurveyForm(c *gin.Context) services.CreateSurveyRequest {
	req := services.CreateSurveyRequest{
		Title:    c.PostForm("title"),
		IsPublic: c.PostForm("is_public") == "on",
		Status:   c.PostForm("status"),
	}
	for i := 0; i < maxFormQuestions; i++ {
		prefix := fmt.Sprintf("questions-%d-", i)
		qType, ok := c.GetPostForm(prefix + "question_type")
		if !ok {
			break
		}
		text := strings.TrimSpace(c.PostForm(prefix + "text"))
		if text == "" {
			continue
		}
		q := services.CreateQuestionRequest{
			Text:       text,
			Type:       qType,
			IsRequired: c.PostForm(prefix+"is_required") == "on",
		}
		for _, line := range strings.Split(c.PostForm(prefix+"choices"), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				q.Choices = append(q.Choices, line)
			}
		}
		req.Questions = append(req.Questions, q)
	}
	return req
}

func (h *PageController) EditSurveyForm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.render(c, http.StatusNotFound, "not_found.html", gin.H{"Title": "Không tìm thấy"})
		return
	}
	survey, err := h.surveys.GetOwned(c.Request.Context(), uint(id), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			h.render(c, http.StatusNotFound, "not_found.html", gin.H{"Title": "Không tìm thấy"})
			return
		}
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "survey_edit.html", gin.H{"Title": survey.Title, "Survey": survey})
}

func (h *PageController) UpdateSurvey(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.render(c, http.StatusNotFound, "not_found.html", gin.H{"Title": "Không tìm thấy"})
		return
	}
	title := c.PostForm("title")
	status := c.PostForm("status")
	public := c.PostForm("is_public") == "on"
	req := services.UpdateSurveyRequest{Title: &title, Status: &status, IsPublic: &public}

	ctx := c.Request.Context()
	ownerID := middleware.CurrentUserID(c)
	survey, err := h.surveys.Update(ctx, uint(id), ownerID, req)
	if err != nil {
		switch ve, ok := services.AsValidationErrors(err); {
		case ok:
			current, gerr := h.surveys.GetOwned(ctx, uint(id), ownerID)
			if gerr != nil {
				h.serverError(c, gerr)
				return
			}
			h.render(c, http.StatusBadRequest, "survey_edit.html", gin.H{"Title": current.Title, "Survey": current, "Errors": ve})
		case errors.Is(err, services.ErrNotFound):
			h.render(c, http.StatusNotFound, "not_found.html", gin.H{"Title": "Không tìm thấy"})
		default:
			h.serverError(c, err)
		}
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/surveys/edit/%d", survey.ID))
}

/* ========== Xem / trả lời survey qua token ========== */

func (h *PageController) SurveyDetail(c *gin.Context) {
	survey, ok := h.loadByToken(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "survey_detail.html", gin.H{"Title": survey.Title, "Survey": survey})
}

func (h *PageController) SubmitSurvey(c *gin.Context) {
	survey, ok := h.loadByToken(c)
	if !ok {
		return
	}

	req, formErrs := parseAnswerForm(c, survey)
	if len(formErrs) > 0 {
		h.render(c, http.StatusBadRequest, "survey_detail.html", gin.H{"Title": survey.Title, "Survey": survey, "Errors": formErrs})
		return
	}

	_, err := h.responses.Submit(c.Request.Context(), survey.Token, middleware.CurrentUserID(c), c.ClientIP(), req)
	if err != nil {
		if ve, ok := services.AsValidationErrors(err); ok {
			h.render(c, http.StatusBadRequest, "survey_detail.html", gin.H{"Title": survey.Title, "Survey": survey, "Errors": ve})
			return
		}
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "survey_thanks.html", gin.H{"Title": survey.Title})
}

// loadByToken render luôn trang lỗi khi không xem được; survey không mở chỉ báo lỗi trong trang.
func (h *PageController) loadByToken(c *gin.Context) (*models.Survey, bool) {
	survey, err := h.surveys.GetByToken(c.Request.Context(), c.Param("token"), middleware.CurrentUserID(c))
	switch {
	case err == nil:
		return survey, true
	case errors.Is(err, services.ErrSurveyNotAccessible):
		h.render(c, http.StatusOK, "survey_detail.html", gin.H{"Title": "Khảo sát", "Error": msgNotAccessible})
	case errors.Is(err, services.ErrNotFound):
		h.render(c, http.StatusNotFound, "not_found.html", gin.H{"Title": "Không tìm thấy"})
	default:
		h.serverError(c, err)
	}
	return nil, false
}

// parseAnswerForm: mỗi câu hỏi là ô q_<id>; câu chọn có thể gửi nhiều giá trị.
func parseAnswerForm(c *gin.Context, survey *models.Survey) (services.SubmitRequest, services.ValidationErrors) {
	var req services.SubmitRequest
	var errs services.ValidationErrors
	for _, q := range survey.Questions {
		name := fmt.Sprintf("q_%d", q.ID)
		a := services.SubmitAnswer{QuestionID: q.ID}
		switch q.Type {
		case models.QuestionSingleChoice, models.QuestionMultipleChoice:
			for _, raw := range c.PostFormArray(name) {
				id, err := strconv.ParseUint(raw, 10, 64)
				if err != nil {
					errs = append(errs, services.ValidationError{Field: name, Rule: "invalid", Message: "invalid choice"})
					continue
				}
				a.ChoiceIDs = append(a.ChoiceIDs, uint(id))
			}
		case models.QuestionScale:
			if raw := strings.TrimSpace(c.PostForm(name)); raw != "" {
				v, err := strconv.Atoi(raw)
				if err != nil {
					errs = append(errs, services.ValidationError{Field: name, Rule: "invalid", Message: "scale must be an integer"})
					continue
				}
				a.Scale = &v
			}
		default:
			if raw := c.PostForm(name); raw != "" {
				a.Text = &raw
			}
		}
		req.Answers = append(req.Answers, a)
	}
	return req, errs
}

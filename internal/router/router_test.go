package router

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"yatube/internal/config"
	"yatube/internal/middleware"
	"yatube/internal/model"
	"yatube/internal/pkg/storage"
	rds "yatube/internal/repository/redis"
	"yatube/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApp(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	r, db, _ := setupAppMedia(t)
	return r, db
}

func setupAppMedia(t *testing.T) (*gin.Engine, *gorm.DB, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Group{}, &model.Post{},
		&model.Comment{}, &model.Follow{}, &model.FollowOutbox{},
	))

	mr := miniredis.RunT(t)
	require.NoError(t, rds.Init(mr.Addr(), "", 0))

	cfg := &config.Config{
		FeedPageSize:  10,
		IndexCacheTTL: 20 * time.Second,
		MediaDriver:   "local",
		MediaDir:      t.TempDir(),
	}
	media := &storage.LocalStorage{Dir: cfg.MediaDir, URLPrefix: "/media/"}
	return InitRouter(cfg, db, media), db, cfg.MediaDir
}

func registerUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		Username: username,
		Password: string(hash),
		Email:    username + "@example.com",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// loginAs 直接走服务层签发会话 token，测试里当 cookie 用
func loginAs(t *testing.T, db *gorm.DB, username string) *http.Cookie {
	t.Helper()
	svc := service.NewUserService(db, nil)
	_, token, err := svc.Login(username, "password123")
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookie, Value: token}
}

func get(r *gin.Engine, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postMultipart(r *gin.Engine, path string, fields map[string]string, fileName string, fileBody []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	fw, _ := mw.CreateFormFile("image", fileName)
	_, _ = fw.Write(fileBody)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(r *gin.Engine, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnonymousCreateRedirects(t *testing.T) {
	r, db := setupApp(t)

	w := postForm(r, "/create/", url.Values{"text": {"sneaky"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/create/", w.Header().Get("Location"))

	// 没有任何帖子落库
	var n int64
	require.NoError(t, db.Model(&model.Post{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreatePostFlow(t *testing.T) {
	r, db := setupApp(t)
	registerUser(t, db, "leo")
	cookie := loginAs(t, db, "leo")

	w := get(r, "/create/", cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = postForm(r, "/create/", url.Values{"text": {"first post"}}, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))

	var post model.Post
	require.NoError(t, db.First(&post).Error)
	assert.Equal(t, "first post", post.Text)

	// 空文本重新渲染表单，不落库
	w = postForm(r, "/create/", url.Values{"text": {""}}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Text is required.")

	var n int64
	require.NoError(t, db.Model(&model.Post{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

// 校验失败的提交连同上传的图片一起丢弃，媒体目录不能留下孤儿文件
func TestFailedSubmitStoresNoMedia(t *testing.T) {
	r, db, mediaDir := setupAppMedia(t)
	registerUser(t, db, "leo")
	cookie := loginAs(t, db, "leo")

	w := postMultipart(r, "/create/", map[string]string{"text": ""}, "cat.png", []byte("png-bytes"), cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Text is required.")

	entries, err := os.ReadDir(mediaDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	var n int64
	require.NoError(t, db.Model(&model.Post{}).Count(&n).Error)
	assert.Zero(t, n)

	// 不存在的小组同样算校验失败
	w = postMultipart(r, "/create/", map[string]string{"text": "hi", "group": "999"}, "cat.png", []byte("png-bytes"), cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	entries, err = os.ReadDir(mediaDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// 校验通过才落盘
	w = postMultipart(r, "/create/", map[string]string{"text": "with image"}, "cat.png", []byte("png-bytes"), cookie)
	assert.Equal(t, http.StatusFound, w.Code)

	var post model.Post
	require.NoError(t, db.First(&post).Error)
	assert.True(t, strings.HasPrefix(post.Image, "/media/posts/"))
	entries, err = os.ReadDir(mediaDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestEditPostOnlyAuthor(t *testing.T) {
	r, db := setupApp(t)
	leo := registerUser(t, db, "leo")
	registerUser(t, db, "mia")

	post := &model.Post{Text: "original", AuthorID: leo.ID}
	require.NoError(t, db.Create(post).Error)
	editURL := fmt.Sprintf("/posts/%d/edit/", post.ID)
	detailURL := fmt.Sprintf("/posts/%d/", post.ID)

	// 非作者 GET/POST 都跳回详情，内容不变
	miaCookie := loginAs(t, db, "mia")
	w := get(r, editURL, miaCookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detailURL, w.Header().Get("Location"))

	w = postForm(r, editURL, url.Values{"text": {"hijacked"}}, miaCookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detailURL, w.Header().Get("Location"))

	var got model.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.Equal(t, "original", got.Text)

	// 作者本人可以改
	leoCookie := loginAs(t, db, "leo")
	w = postForm(r, editURL, url.Values{"text": {"updated"}}, leoCookie)
	assert.Equal(t, http.StatusFound, w.Code)

	require.NoError(t, db.First(&got, post.ID).Error)
	assert.Equal(t, "updated", got.Text)
}

func TestGroupPagePagination(t *testing.T) {
	r, db := setupApp(t)
	leo := registerUser(t, db, "leo")
	group := &model.Group{Title: "Test", Slug: "test-slug", Description: "d"}
	require.NoError(t, db.Create(group).Error)

	for i := 0; i < 13; i++ {
		require.NoError(t, db.Create(&model.Post{
			Text:     fmt.Sprintf("post %d", i),
			AuthorID: leo.ID,
			GroupID:  &group.ID,
		}).Error)
	}

	w := get(r, "/group/test-slug/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, strings.Count(w.Body.String(), "<article"))

	w = get(r, "/group/test-slug/?page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, strings.Count(w.Body.String(), "<article"))

	w = get(r, "/group/no-such-slug/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIndexCacheUntilExplicitClear(t *testing.T) {
	r, db := setupApp(t)
	leo := registerUser(t, db, "leo")

	first := get(r, "/", nil)
	require.Equal(t, http.StatusOK, first.Code)

	// 缓存期间的帖子增删对首页不可见
	require.NoError(t, db.Create(&model.Post{Text: "fresh post", AuthorID: leo.ID}).Error)
	second := get(r, "/", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.NotContains(t, second.Body.String(), "fresh post")

	cache := &rds.PageCacheRepository{TTL: 20 * time.Second}
	require.NoError(t, cache.Clear("/"))

	third := get(r, "/", nil)
	require.Equal(t, http.StatusOK, third.Code)
	assert.Contains(t, third.Body.String(), "fresh post")
}

func TestLoginFlowWithNext(t *testing.T) {
	r, db := setupApp(t)
	registerUser(t, db, "leo")

	w := postForm(r, "/auth/login/", url.Values{
		"username": {"leo"},
		"password": {"password123"},
		"next":     {"/create/"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create/", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	require.NotEmpty(t, session.Value)

	// 拿着 cookie 就能进登录保护页
	w = get(r, "/create/", session)
	assert.Equal(t, http.StatusOK, w.Code)

	// 错误密码回显表单
	w = postForm(r, "/auth/login/", url.Values{
		"username": {"leo"},
		"password": {"wrong"},
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// next 只接受站内路径，//host 形式的协议相对跳转回退到首页
func TestLoginNextRejectsExternal(t *testing.T) {
	r, db := setupApp(t)
	registerUser(t, db, "leo")

	w := postForm(r, "/auth/login/", url.Values{
		"username": {"leo"},
		"password": {"password123"},
		"next":     {"//evil.com"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = postForm(r, "/auth/login/?next=//evil.com/create/", url.Values{
		"username": {"leo"},
		"password": {"password123"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestLogoutInvalidatesCookie(t *testing.T) {
	r, db := setupApp(t)
	registerUser(t, db, "leo")
	cookie := loginAs(t, db, "leo")

	w := get(r, "/auth/logout/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)

	// 登出后旧 cookie 立即失效
	w = get(r, "/create/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/create/", w.Header().Get("Location"))
}

func TestFollowUnfollowFlow(t *testing.T) {
	r, db := setupApp(t)
	registerUser(t, db, "leo")
	mia := registerUser(t, db, "mia")
	cookie := loginAs(t, db, "leo")

	w := get(r, "/profile/mia/follow/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/mia/", w.Header().Get("Location"))

	var n int64
	require.NoError(t, db.Model(&model.Follow{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	// 关注后 follow 页能看到对方的帖子
	require.NoError(t, db.Create(&model.Post{Text: "mia writes", AuthorID: mia.ID}).Error)
	w = get(r, "/follow/", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mia writes")

	w = get(r, "/profile/mia/unfollow/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	require.NoError(t, db.Model(&model.Follow{}).Count(&n).Error)
	assert.Zero(t, n)

	// 自关注按无事发生处理
	w = get(r, "/profile/leo/follow/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	require.NoError(t, db.Model(&model.Follow{}).Count(&n).Error)
	assert.Zero(t, n)

	w = get(r, "/profile/ghost/follow/", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddCommentFlow(t *testing.T) {
	r, db := setupApp(t)
	leo := registerUser(t, db, "leo")
	cookie := loginAs(t, db, "leo")

	post := &model.Post{Text: "hello", AuthorID: leo.ID}
	require.NoError(t, db.Create(post).Error)
	commentURL := fmt.Sprintf("/posts/%d/comment/", post.ID)
	detailURL := fmt.Sprintf("/posts/%d/", post.ID)

	w := postForm(r, commentURL, url.Values{"text": {"nice one"}}, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detailURL, w.Header().Get("Location"))

	w = get(r, detailURL, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nice one")

	// 空评论不落库，跳回详情
	w = postForm(r, commentURL, url.Values{"text": {""}}, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	var n int64
	require.NoError(t, db.Model(&model.Comment{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestGuardPages(t *testing.T) {
	r, db := setupApp(t)
	registerUser(t, db, "leo")
	cookie := loginAs(t, db, "leo")

	// 已登录访问登录页跳 only_anon 提示页
	w := get(r, "/auth/login/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, middleware.OnlyAnonPath, w.Header().Get("Location"))

	// 匿名访问改密码页跳 only_user 提示页
	w = get(r, "/auth/password_change/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, middleware.OnlyUserPath, w.Header().Get("Location"))

	w = get(r, middleware.OnlyAnonPath, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = get(r, middleware.OnlyUserPath, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownRoutesAndProfiles(t *testing.T) {
	r, _ := setupApp(t)

	w := get(r, "/profile/ghost/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(r, "/posts/999/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(r, "/no/such/page/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package post

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"linkedin-post-ai/internal/domain/entity"
	apperrors "linkedin-post-ai/pkg/errors"
	"linkedin-post-ai/pkg/logger"
)

const (
	// FailureNotice 生成失败时展示给用户的提示
	FailureNotice = "We couldn't generate your post right now. Please try again."
	// NoTopicsNotice 话题目录为空时的提示
	NoTopicsNotice = "No topics available yet. Add example posts to enable generation."
)

// TopicCatalog 话题目录端口
type TopicCatalog interface {
	Topics(ctx context.Context) ([]string, error)
}

// PostGenerator 生成端口
type PostGenerator interface {
	Generate(ctx context.Context, req entity.GenerationRequest) (entity.GeneratedPost, error)
}

// State 页面会话状态
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateDisplaying State = "displaying"
	StateFailed     State = "failed"
)

// Session 单个页面会话的状态机：Idle → Submitting → Displaying | Failed
type Session struct {
	mu    sync.Mutex
	state State
}

// NewSession 创建处于 Idle 的会话
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// State 当前状态
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// begin 进入 Submitting；提交进行中时拒绝
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return ErrIllegalTransition
	}
	s.state = StateSubmitting
	return nil
}

func (s *Session) finish(ok bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitting {
		return ErrIllegalTransition
	}
	if ok {
		s.state = StateDisplaying
	} else {
		s.state = StateFailed
	}
	return nil
}

// Options 页面可选项
type Options struct {
	Topics    []string
	Lengths   []entity.Length
	Languages []entity.Language
	// Fact 页面加载时随机展示
	Fact string
}

// CanSubmit 目录为空时禁止提交
func (o *Options) CanSubmit() bool {
	return len(o.Topics) > 0
}

// Outcome 一次提交的结果；Post 仅在 Displaying 时非空
type Outcome struct {
	State   State
	Request entity.GenerationRequest
	Post    *entity.GeneratedPost
	Tip     string
	Notice  string
	// Failure 生成失败原因（GenerationError）
	Failure error
}

// Flow 帖子请求流程
type Flow struct {
	catalog   TopicCatalog
	generator PostGenerator
	picker    *Picker
	facts     []string
	tips      []string
}

// NewFlow 创建流程；facts/tips 为空时使用内置文案
func NewFlow(catalog TopicCatalog, generator PostGenerator, picker *Picker, facts, tips []string) *Flow {
	if picker == nil {
		picker = NewPicker(nil)
	}
	return &Flow{
		catalog:   catalog,
		generator: generator,
		picker:    picker,
		facts:     orDefault(facts, DefaultFacts),
		tips:      orDefault(tips, DefaultTips),
	}
}

// Options 查询最新话题目录，生成页面选项
func (f *Flow) Options(ctx context.Context) (*Options, error) {
	topics, err := f.catalog.Topics(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load topics")
	}
	return &Options{
		Topics:    topics,
		Lengths:   entity.Lengths(),
		Languages: entity.Languages(),
		Fact:      f.picker.Pick(f.facts),
	}, nil
}

// Submit 校验输入后调用一次生成端口。
// session 为 nil 时按单次请求新建；HTTP 层无状态，会话互斥只约束复用同一 Session 的调用方。
// 返回 error 表示请求被拒绝且未调用生成；生成失败体现在 Outcome.State == StateFailed。
func (f *Flow) Submit(ctx context.Context, session *Session, topic, length, language string) (*Outcome, error) {
	if session == nil {
		session = NewSession()
	}

	req, err := f.Validate(ctx, topic, length, language)
	if err != nil {
		return nil, err
	}
	if err := session.begin(); err != nil {
		return nil, apperrors.ErrTooManyRequests.WithDetail("a submission is already in progress").WithError(err)
	}

	ctx = logger.WithContext(ctx, logger.TopicKey, req.Topic)
	post, genErr := f.generator.Generate(ctx, req)
	switch {
	case genErr == nil && strings.TrimSpace(post.Text) == "":
		genErr = generationFailure(nil)
	case genErr != nil && !errors.Is(genErr, ErrGenerationFailure):
		genErr = generationFailure(genErr)
	}

	out := &Outcome{Request: req}
	if genErr != nil {
		logger.Error(ctx, "post generation failed", genErr,
			"length", string(req.Length),
			"language", string(req.Language),
		)
		if err := session.finish(false); err != nil {
			logger.Warn(ctx, "session left submitting state early", "error", err.Error())
		}
		out.State = StateFailed
		out.Notice = FailureNotice
		out.Failure = genErr
		return out, nil
	}

	if err := session.finish(true); err != nil {
		logger.Warn(ctx, "session left submitting state early", "error", err.Error())
	}
	out.State = StateDisplaying
	out.Post = &post
	out.Tip = f.Tip()
	return out, nil
}

// Validate 校验长度、语言与话题目录成员资格，供流式接口复用
func (f *Flow) Validate(ctx context.Context, topic, length, language string) (entity.GenerationRequest, error) {
	l, err := entity.ParseLength(length)
	if err != nil {
		return entity.GenerationRequest{}, apperrors.ErrInvalidParam.WithDetail(err.Error())
	}
	lang, err := entity.ParseLanguage(language)
	if err != nil {
		return entity.GenerationRequest{}, apperrors.ErrInvalidParam.WithDetail(err.Error())
	}

	topics, err := f.catalog.Topics(ctx)
	if err != nil {
		return entity.GenerationRequest{}, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load topics")
	}
	if len(topics) == 0 {
		return entity.GenerationRequest{}, apperrors.ErrNoTopics
	}
	topic = strings.TrimSpace(topic)
	if !slices.Contains(topics, topic) {
		return entity.GenerationRequest{}, apperrors.ErrTopicNotFound.WithDetail(topic)
	}

	return entity.GenerationRequest{Topic: topic, Length: l, Language: lang}, nil
}

// Tip 随机取一条发布建议，供流式接口在结束时展示
func (f *Flow) Tip() string {
	return f.picker.Pick(f.tips)
}

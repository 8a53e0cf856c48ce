package portal

import (
	"errors"
	"sync"

	"github.com/ltaportal/procurement/pkg/apiclient"
	"go.uber.org/zap"
)

type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
)

// ParseLanguage falls back to English for anything but "ar".
func ParseLanguage(s string) Language {
	if Language(s) == Arabic {
		return Arabic
	}
	return English
}

// Dir is the text direction of the language.
func (l Language) Dir() string {
	if l == Arabic {
		return "rtl"
	}
	return "ltr"
}

// Locale is the current language, shared by everything that shows text.
type Locale struct {
	mu   sync.RWMutex
	lang Language
}

func NewLocale(lang Language) *Locale {
	return &Locale{lang: lang}
}

func (l *Locale) Language() Language {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lang
}

func (l *Locale) Set(lang Language) {
	l.mu.Lock()
	l.lang = lang
	l.mu.Unlock()
}

type MessageID string

const (
	MsgError               MessageID = "error"
	MsgMarkReadFailed      MessageID = "notifications.markReadFailed"
	MsgDeleteFailed        MessageID = "notifications.deleteFailed"
	MsgMarkAllReadFailed   MessageID = "notifications.markAllReadFailed"
	MsgDeleteAllReadFailed MessageID = "notifications.deleteAllReadFailed"
	MsgCancelOrderFailed   MessageID = "orders.cancelFailed"
	MsgOrderCancelled      MessageID = "orders.cancelled"
	MsgDownloadFailed      MessageID = "documents.downloadFailed"
	MsgSessionExpired      MessageID = "errors.sessionExpired"
	MsgRateLimited         MessageID = "errors.rateLimited"
	MsgServerError         MessageID = "errors.server"
	MsgNetworkError        MessageID = "errors.network"
)

var messages = map[MessageID][2]string{
	MsgError:               {"Error", "خطأ"},
	MsgMarkReadFailed:      {"Could not mark the notification as read", "تعذر تحديد الإشعار كمقروء"},
	MsgDeleteFailed:        {"Could not delete the notification", "تعذر حذف الإشعار"},
	MsgMarkAllReadFailed:   {"Could not mark all notifications as read", "تعذر تحديد جميع الإشعارات كمقروءة"},
	MsgDeleteAllReadFailed: {"Could not delete read notifications", "تعذر حذف الإشعارات المقروءة"},
	MsgCancelOrderFailed:   {"Could not cancel the order", "تعذر إلغاء الطلب"},
	MsgOrderCancelled:      {"Order cancelled", "تم إلغاء الطلب"},
	MsgDownloadFailed:      {"Could not prepare the download", "تعذر تجهيز التنزيل"},
	MsgSessionExpired:      {"Your session has expired. Please sign in again.", "انتهت جلستك. يرجى تسجيل الدخول مرة أخرى."},
	MsgRateLimited:         {"Too many requests. Please wait a moment.", "طلبات كثيرة جدًا. يرجى الانتظار قليلًا."},
	MsgServerError:         {"The server could not complete the request.", "تعذر على الخادم إكمال الطلب."},
	MsgNetworkError:        {"Cannot reach the server. Check your connection.", "تعذر الوصول إلى الخادم. تحقق من اتصالك."},
}

// T returns the text of id in lang, or id itself when unknown.
func T(lang Language, id MessageID) string {
	m, ok := messages[id]
	if !ok {
		return string(id)
	}
	if lang == Arabic {
		return m[1]
	}
	return m[0]
}

type ToastVariant string

const (
	ToastDefault     ToastVariant = "default"
	ToastDestructive ToastVariant = "destructive"
)

type Toast struct {
	Variant     ToastVariant
	Title       string
	Description string
}

// Toaster displays toasts. Implementations must be safe for concurrent use.
type Toaster interface {
	Show(Toast)
}

// LogToaster writes toasts to a zap logger, for hosts without a UI.
type LogToaster struct {
	Logger *zap.Logger
}

func (t LogToaster) Show(toast Toast) {
	t.Logger.Info("toast",
		zap.String("variant", string(toast.Variant)),
		zap.String("title", toast.Title),
		zap.String("description", toast.Description),
	)
}

// Toasts localizes toasts before handing them to a Toaster. A nil *Toasts
// drops everything.
type Toasts struct {
	toaster Toaster
	locale  *Locale
}

func NewToasts(toaster Toaster, locale *Locale) *Toasts {
	return &Toasts{toaster: toaster, locale: locale}
}

// Error shows a destructive toast titled title describing err.
func (t *Toasts) Error(title MessageID, err error) {
	if t == nil || t.toaster == nil {
		return
	}
	lang := t.locale.Language()
	t.toaster.Show(Toast{
		Variant:     ToastDestructive,
		Title:       T(lang, title),
		Description: describe(lang, err),
	})
}

// Info shows a default toast.
func (t *Toasts) Info(title MessageID) {
	if t == nil || t.toaster == nil {
		return
	}
	t.toaster.Show(Toast{Variant: ToastDefault, Title: T(t.locale.Language(), title)})
}

func describe(lang Language, err error) string {
	var netErr *apiclient.NetworkError
	switch {
	case apiclient.IsUnauthorized(err):
		return T(lang, MsgSessionExpired)
	case apiclient.IsRateLimited(err):
		return T(lang, MsgRateLimited)
	case apiclient.IsServerError(err):
		return T(lang, MsgServerError)
	case errors.As(err, &netErr):
		return T(lang, MsgNetworkError)
	case err != nil:
		return err.Error()
	}
	return ""
}

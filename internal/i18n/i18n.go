// Package i18n holds the user-facing notice texts in English and Arabic.
package i18n

import "strings"

type Lang string

const (
	EN Lang = "en"
	AR Lang = "ar"
)

// ParseLang picks the first supported language from a tag or an
// Accept-Language header value; anything else falls back to English.
func ParseLang(s string) Lang {
	for _, part := range strings.Split(s, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if i := strings.IndexAny(tag, ";-_"); i >= 0 {
			tag = tag[:i]
		}
		switch tag {
		case "ar":
			return AR
		case "en":
			return EN
		}
	}
	return EN
}

// RTL reports whether the language is written right to left.
func (l Lang) RTL() bool { return l == AR }

type Key string

const (
	SubmitSuccessTitle Key = "submit.success.title"
	SubmitSuccessBody  Key = "submit.success.body"
	SubmitErrorTitle   Key = "submit.error.title"
	SubmitErrorBody    Key = "submit.error.body"
	SubmitBusy         Key = "submit.busy"

	AlertNewBooking Key = "alert.new_booking"
	AlertNewMessage Key = "alert.new_message"
)

var catalog = map[Lang]map[Key]string{
	EN: {
		SubmitSuccessTitle: "Message Sent!",
		SubmitSuccessBody:  "We will get back to you soon.",
		SubmitErrorTitle:   "Error",
		SubmitErrorBody:    "Failed to submit. Please try again.",
		SubmitBusy:         "Sending...",
		AlertNewBooking:    "New booking request",
		AlertNewMessage:    "New contact message",
	},
	AR: {
		SubmitSuccessTitle: "تم الإرسال بنجاح",
		SubmitSuccessBody:  "سنتواصل معك قريباً",
		SubmitErrorTitle:   "خطأ",
		SubmitErrorBody:    "فشل في الإرسال. حاول مرة أخرى.",
		SubmitBusy:         "جاري الإرسال...",
		AlertNewBooking:    "طلب حجز جديد",
		AlertNewMessage:    "رسالة تواصل جديدة",
	},
}

// T returns the text for key in lang, falling back to English and then to the key itself.
func T(lang Lang, key Key) string {
	if s, ok := catalog[lang][key]; ok {
		return s
	}
	if s, ok := catalog[EN][key]; ok {
		return s
	}
	return string(key)
}

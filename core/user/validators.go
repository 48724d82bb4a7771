package user

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/owais185-web/LuminaLMSPush/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonText = "password is too common"
	commonPasswords = []string{
		"admin123!", "iloveyou1!", "letmein1!", "p@ssw0rd", "p@ssw0rd1", "passw0rd!",
		"password1!", "password123!", "qwerty123!", "welcome1!", "welcome123!",
	}
)

func init() {
	sort.Strings(commonPasswords)

	_ = core.Validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, roleTag, roleText)

	core.Validate.RegisterStructValidation(userStructValidation, NewUser{}, ResetUserPassword{})
	for tag, text := range map[string]string{
		pwdMinLenTag:     pwdMinLenText,
		pwdNoSpaceTag:    pwdNoSpaceText,
		pwdNotAllNumTag:  pwdNotAllNumText,
		pwdComplexityTag: pwdComplexityText,
		pwdAttrSimTag:    pwdAttrSimText,
		pwdNoCommonTag:   pwdNoCommonText,
	} {
		core.RegisterCustomTranslation(core.Validate, core.Translator, tag, text)
	}
}

func roleValidation(fl validator.FieldLevel) bool {
	return Role(fl.Field().String()).Valid()
}

// userStructValidation applies the password policy on NewUser and ResetUserPassword structs.
func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewUser:
		validatePassword(usr.Password, sl, usr.Name, usr.Email)
	case ResetUserPassword:
		validatePassword(usr.Password, sl, usr.usr.Name, usr.usr.Email)
	}
}

type pwdRule struct {
	tag   string
	check func(pwd string, attrs []string) bool // true when pwd passes
}

// pwdPolicy is evaluated in order, only the first failing rule is reported.
var pwdPolicy = []pwdRule{
	{pwdMinLenTag, func(pwd string, _ []string) bool { return utf8.RuneCountInString(pwd) >= pwdMinLen }},
	{pwdNoSpaceTag, func(pwd string, _ []string) bool { return strings.IndexFunc(pwd, unicode.IsSpace) < 0 }},
	{pwdNotAllNumTag, func(pwd string, _ []string) bool { return strings.IndexFunc(pwd, notDigit) >= 0 }},
	{pwdComplexityTag, func(pwd string, _ []string) bool {
		return strings.IndexFunc(pwd, unicode.IsUpper) >= 0 &&
			strings.IndexFunc(pwd, unicode.IsLower) >= 0 &&
			strings.IndexFunc(pwd, unicode.IsDigit) >= 0 &&
			specialRegex.MatchString(pwd)
	}},
	{pwdAttrSimTag, func(pwd string, attrs []string) bool {
		chars := strings.Split(strings.ToLower(pwd), "")
		for _, attr := range attrs {
			if attr == "" {
				continue
			}
			m := difflib.NewMatcher(chars, strings.Split(strings.ToLower(attr), ""))
			if m.QuickRatio() >= pwdMaxSim {
				return false
			}
		}
		return true
	}},
	{pwdNoCommonTag, func(pwd string, _ []string) bool {
		lpwd := strings.ToLower(pwd)
		idx := sort.SearchStrings(commonPasswords, lpwd)
		return idx == len(commonPasswords) || commonPasswords[idx] != lpwd
	}},
}

func notDigit(r rune) bool { return !unicode.IsDigit(r) }

// validatePassword reports the first pwdPolicy rule pwd breaks.
// attrs are the user's name and email, which pwd must not resemble.
func validatePassword(pwd string, sl validator.StructLevel, attrs ...string) {
	for _, rule := range pwdPolicy {
		if !rule.check(pwd, attrs) {
			sl.ReportError(pwd, "password", "Password", rule.tag, "")
			return
		}
	}
}

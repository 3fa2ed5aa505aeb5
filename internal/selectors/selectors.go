// Package selectors builds corpus selectors from short expressions.
//
// Supported forms:
//
//	glob:<pattern>            doublestar glob over the artifact key
//	regex:<expr>              RE2 match anywhere in the key
//	digits:<n>:<pattern>      parent folder starts with n digits and the
//	                          file name matches pattern
//	<pattern>                 shorthand for glob:<pattern>
//
// Several expressions joined with "," must all match.
package selectors

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// Parse builds a selector from an expression.
func Parse(expr string) (domain.Selector, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty selector", domain.ErrInvalidInput)
	}

	parts := strings.Split(expr, ",")
	if len(parts) > 1 {
		sels := make([]domain.Selector, 0, len(parts))
		for _, p := range parts {
			sel, err := Parse(p)
			if err != nil {
				return nil, err
			}
			sels = append(sels, sel)
		}
		return All(sels...), nil
	}

	kind, rest, found := strings.Cut(expr, ":")
	if !found {
		return Glob(expr)
	}
	switch kind {
	case "glob":
		return Glob(rest)
	case "regex":
		return Regex(rest)
	case "digits":
		n, pattern, ok := strings.Cut(rest, ":")
		if !ok {
			pattern = "*"
		}
		count, err := strconv.Atoi(n)
		if err != nil || count < 1 {
			return nil, fmt.Errorf("%w: digits selector needs a positive count: %q", domain.ErrInvalidInput, expr)
		}
		return DigitFolders(count, pattern)
	default:
		return Glob(expr)
	}
}

// Glob matches keys against a doublestar pattern such as "module*/charts/**/*.py".
func Glob(pattern string) (domain.Selector, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: bad glob %q", domain.ErrInvalidInput, pattern)
	}
	return domain.SelectorFunc(func(key string) bool {
		ok, err := doublestar.Match(pattern, key)
		return err == nil && ok
	}), nil
}

// Regex matches keys containing a match of expr.
func Regex(expr string) (domain.Selector, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: bad regex %q: %w", domain.ErrInvalidInput, expr, err)
	}
	return domain.SelectorFunc(re.MatchString), nil
}

// DigitFolders matches artifacts whose immediate folder name starts with
// n ASCII digits and whose file name matches pattern.
func DigitFolders(n int, pattern string) (domain.Selector, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: bad file pattern %q", domain.ErrInvalidInput, pattern)
	}
	return domain.SelectorFunc(func(key string) bool {
		folder := domain.KeyFolder(key)
		if len(folder) < n {
			return false
		}
		for i := 0; i < n; i++ {
			if folder[i] < '0' || folder[i] > '9' {
				return false
			}
		}
		ok, err := doublestar.Match(pattern, domain.KeyName(key))
		return err == nil && ok
	}), nil
}

// All matches keys accepted by every selector.
func All(sels ...domain.Selector) domain.Selector {
	return domain.SelectorFunc(func(key string) bool {
		for _, s := range sels {
			if !s.Match(key) {
				return false
			}
		}
		return true
	})
}

// Any matches keys accepted by at least one selector.
func Any(sels ...domain.Selector) domain.Selector {
	return domain.SelectorFunc(func(key string) bool {
		for _, s := range sels {
			if s.Match(key) {
				return true
			}
		}
		return false
	})
}

// Not inverts a selector.
func Not(sel domain.Selector) domain.Selector {
	return domain.SelectorFunc(func(key string) bool {
		return !sel.Match(key)
	})
}

// Keys matches exactly the given keys.
func Keys(keys ...string) domain.Selector {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return domain.SelectorFunc(func(key string) bool {
		return set[key]
	})
}

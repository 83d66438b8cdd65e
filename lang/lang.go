// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package lang provides command text in alternative languages.
//
// The language precedence is the value of the "LANG" environment variable
// followed by Default and then en_US.UTF-8. Change the default with,
//
//	-X github.com/forecr/forecr-xavier-kernel-sub027/lang.Default=fr_FR.UTF-8
package lang

import "os"

const EnUS = "en_US.UTF-8"

var (
	Default = EnUS
	env     string
)

type Alt map[string]string

// String returns the text in the prefered language, if available.
func (m Alt) String() string {
	if len(env) == 0 {
		env = os.Getenv("LANG")
	}
	for _, lang := range []string{env, Default, EnUS} {
		if s, found := m[lang]; found {
			return s
		}
	}
	return ""
}

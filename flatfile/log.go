// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package flatfile

import "github.com/decred/slog"

// log is the package-level subsystem logger. It defaults to a disabled
// backend so tests and other callers that never invoke UseLogger don't pay
// for or see any log output.
var log = slog.Disabled

// UseLogger sets the package-level logger used by the flatfile package.
// Nothing in this module calls it; until a caller does, logging stays
// disabled.
func UseLogger(logger slog.Logger) {
	log = logger
}

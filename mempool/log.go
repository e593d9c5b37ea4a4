// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import "github.com/decred/slog"

// log is the package-level subsystem logger.
var log = slog.Disabled

// UseLogger sets the package-level logger used by the mempool package.
func UseLogger(logger slog.Logger) {
	log = logger
}

// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leadership

import "github.com/decred/slog"

// log is the package-level logger used by leadership. It is disabled by
// default; a caller wires up a real backend with UseLogger the same
// way every other package in this module does.
var log = slog.Disabled

// UseLogger sets the subsystem logger used by this package.
func UseLogger(logger slog.Logger) {
	log = logger
}

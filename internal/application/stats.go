package application

import "expvar"

// stats is published at /api/debug/vars under "identity".
var stats = expvar.NewMap("identity")

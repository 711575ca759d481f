package ropesim

import (
	"net/http"
	"net/http/pprof"
	"runtime"
)

// mountProfiling exposes the runtime profiles under /debug/pprof/ on mux.
func mountProfiling(mux *http.ServeMux) {
	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(1)

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

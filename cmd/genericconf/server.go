// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/timelock-guard/blob/master/LICENSE.md

package genericconf

import (
	"net/http"
	"net/http/pprof"

	"github.com/ethereum/go-ethereum/log"
)

func StartPprof(address string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	log.Info("Starting pprof server", "addr", "http://"+address+"/debug/pprof")
	go func() {
		// #nosec G114
		if err := http.ListenAndServe(address, mux); err != nil {
			log.Error("Pprof server failed", "err", err)
		}
	}()
}

package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// universalResolverABI is the minimal ABI surface chainwatcher needs from
// the operator-configured universal resolver: resolving a newly minted
// name-hash to its resolver address, and recovering its human-readable
// label.
const universalResolverABIJSON = `[
	{"name":"resolver","type":"function","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"name":"name","type":"function","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"string"}]}
]`

func universalResolverABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(universalResolverABIJSON))
}

package main

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/gorilla/mux"
	"github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/modular-market/market/api"
	"github.com/modular-market/market/config"
)

func serveRPC(ctx context.Context, cfg *config.APIConfig, a api.MarketFullNode, shutdownCh <-chan struct{}) error {
	rpcServer := jsonrpc.NewServer()
	rpcServer.Register("Market", a)

	handler := mux.NewRouter()
	handler.Handle("/rpc/v0", rpcServer)
	handler.PathPrefix("/").Handler(http.DefaultServeMux)

	srv := &http.Server{Handler: handler}

	go func() {
		select {
		case <-shutdownCh:
		case <-ctx.Done():
		}

		log.Warn("shutting down rpc server")
		if err := srv.Shutdown(context.TODO()); err != nil {
			log.Errorf("shutting down RPC server failed: %s", err)
		}
	}()

	addr, err := multiaddr.NewMultiaddr(cfg.ListenAddress)
	if err != nil {
		return err
	}

	nl, err := manet.Listen(addr)
	if err != nil {
		return err
	}
	log.Infow("rpc server listening", "addr", cfg.ListenAddress)
	return srv.Serve(manet.NetListener(nl))
}

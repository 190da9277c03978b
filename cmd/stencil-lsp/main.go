// SPDX-License-Identifier: Apache-2.0
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"stencil/internal/lsp"
)

const lsName = "stencil-lsp"

var (
	version = "0.0.1"
	handler protocol.Handler
)

func main() {
	commonlog.Configure(1, nil)

	stencilHandler := lsp.NewStencilHandler()

	handler = protocol.Handler{
		Initialize:                     stencilHandler.Initialize,
		Initialized:                    stencilHandler.Initialized,
		Shutdown:                       stencilHandler.Shutdown,
		TextDocumentDidOpen:            stencilHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           stencilHandler.TextDocumentDidClose,
		TextDocumentDidChange:          stencilHandler.TextDocumentDidChange,
		TextDocumentCompletion:         stencilHandler.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: stencilHandler.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting stencil-lsp server...")

	if err := s.RunStdio(); err != nil {
		log.Println("Error starting stencil-lsp server:", err)
		os.Exit(1)
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gghost drives a chart engine from a gogpu host window.
//
// The host owns the display loop. The engine asks for frames through
// gpucontext.WindowProvider.RequestRedraw and the host calls Host.Frame
// from its draw callback, which runs the pending render work on the host
// thread:
//
//	h, err := gghost.Bind(engine, app.WindowProvider(),
//	    gghost.WithPointerSource(app.PointerEventSource()),
//	    gghost.WithPlatform(app.PlatformProvider()),
//	)
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    if err := h.Frame(); err != nil {
//	        log.Println(err)
//	    }
//	})
//
// # Integration Without Circular Imports
//
// This package depends only on the gpucontext interfaces, so it works with
// any host that implements them.
package gghost

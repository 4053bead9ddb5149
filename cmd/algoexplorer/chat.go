// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
	"github.com/AleutianAI/AlgoExplorer/services/chat"
	"github.com/AleutianAI/AlgoExplorer/services/chat/history"
)

// openChat builds the tutor session for algo. The provider comes from
// override, then the provider used last time, then the config. The
// returned store must be closed by the caller, also when err is non-nil.
func (a *app) openChat(ctx context.Context, algo frames.AlgorithmType, override string) (*chat.Session, *history.Store, error) {
	storeCfg := history.InMemoryConfig()
	if dir := a.cfg.Chat.HistoryDir; dir != "" {
		storeCfg = history.DefaultConfig(dir)
	}
	storeCfg.Logger = a.log()
	store, err := history.Open(storeCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open chat history: %w", err)
	}

	chatCfg := a.cfg.Chat.Config
	switch {
	case override != "":
		chatCfg.Provider = override
	default:
		if last, err := store.Provider(ctx); err == nil && last != "" {
			chatCfg.Provider = last
		}
	}

	streamer, err := chat.NewStreamer(chatCfg, a.log())
	if err != nil {
		return nil, store, err
	}
	if err := store.SetProvider(ctx, chatCfg.Provider); err != nil {
		a.log().Warn("could not remember chat provider", "error", err)
	}
	sess, err := chat.NewSession(ctx, algo, chat.SessionOptions{
		Streamer: streamer,
		History:  store,
		Logger:   a.log(),
	})
	return sess, store, err
}

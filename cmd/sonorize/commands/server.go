package commands

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/jinford/sonorize/internal/interface/api"
)

// ServerStartAction はHTTPサーバを起動するコマンドのアクション
func ServerStartAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	// ポートはフラグ指定が環境変数より優先される
	port := appCtx.Config.Server.Port
	if cmd.IsSet("port") {
		port = cmd.Int("port")
	}

	// ワーカープールを起動してからリクエストを受け付ける
	appCtx.Container.Start(ctx)

	handler := api.NewHandler(appCtx.Container.Service, appCtx.Logger())
	server := api.NewServer(port, handler, appCtx.Logger())

	slog.Info("サーバを起動します", "port", port)
	if err := server.Run(ctx); err != nil {
		slog.Error("サーバの実行に失敗しました", "error", err)
		return err
	}

	slog.Info("サーバを停止しました")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"skycanvas-client-go/internal/bootstrap"
	"skycanvas-client-go/internal/domain/login"
)

func main() {
	fmt.Printf("[%s] [INFO] [bootstrap] 开始启动 skycanvas-client...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "skycanvas-client failed: %v\n", err)
		os.Exit(1)
	}
}

// run assembles the SDK, performs the cold-start auto-login, and dumps
// the resulting session state. Real shells replace the static providers
// with their platform bridges.
func run(ctx context.Context) error {
	app, err := bootstrap.New(ctx, bootstrap.Options{
		Issuer:   &login.StaticCodeIssuer{Code: os.Getenv("SKYCANVAS_LOGIN_CODE")},
		Prompter: &login.StaticConsent{Granted: false},
	})
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Session.InitLogin(ctx); err != nil {
		app.Logger.Warn("[bootstrap] 自动登录失败: %v", err)
	}

	fmt.Println("state:      ", app.Session.State())
	fmt.Println("has session:", app.Session.HasSession())
	fmt.Println("display:    ", app.Session.DisplayName())
	fmt.Println("credits:    ", app.Session.Credits())
	if profile, ok := app.Session.CurrentProfile(); ok {
		fmt.Println("profile id: ", profile.ID)
	}
	return nil
}

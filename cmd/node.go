package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rtoken/core"
	"rtoken/handler"
	"rtoken/worker/keeper"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var nodeCmd = &cobra.Command{
	Use:     "node",
	Aliases: []string{"server"},
	Short:   "run the rtoken keeper and api server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		var events core.EventStore
		if persist, _ := cmd.Flags().GetBool("persist-events"); persist {
			database := provideDatabase()
			defer database.Close()
			events = provideEventStore(database)
		}

		prices := providePriceService()
		n, err := provideNode(ctx, provideConfig(), prices, provideEventBus(events))
		if err != nil {
			return err
		}

		port, _ := cmd.Flags().GetInt("port")
		addr := fmt.Sprintf(":%d", port)

		server := &http.Server{
			Addr:    addr,
			Handler: handler.New(n.protocol, n.house, events, n.pools, rootCmd.Version).Handler(),
		}

		ctx, quit := context.WithCancel(ctx)
		defer quit()

		done := make(chan struct{}, 1)
		signal.WithContextFunc(ctx, func() {
			quit()

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logrus.WithError(err).Error("graceful shutdown server failed")
			}

			close(done)
		})

		k := keeper.New(keeper.Config{
			Spec:  cfg.Keeper.Spec,
			Feeds: n.feeds,
		}, n.protocol, prices)

		var g errgroup.Group
		g.Go(func() error {
			if err := k.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			return nil
		})

		g.Go(func() error {
			logrus.Infoln("serve at", addr)
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				quit()
				return err
			}

			<-done
			return nil
		})

		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(nodeCmd)
	nodeCmd.Flags().IntP("port", "p", 9000, "server port")
	nodeCmd.Flags().Bool("persist-events", false, "save events to the database")
}

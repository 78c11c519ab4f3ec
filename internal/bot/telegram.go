package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"coinsight/internal/advisor"
	"coinsight/internal/domain"
	"coinsight/internal/service"

	tele "gopkg.in/telebot.v3"
)

func StartTelegramBot(marketService *service.MarketService, advisorService *advisor.AdvisorService) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/price", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /price BTC\nSupported: %s", strings.Join(domain.SupportedSymbols, ", ")))
		}
		symbol := strings.ToUpper(args[0])
		if !domain.IsSupported(symbol) {
			return c.Send(fmt.Sprintf("Unknown symbol: %s\nSupported: %s", symbol, strings.Join(domain.SupportedSymbols, ", ")))
		}
		snapshot := marketService.GetMarketData(context.Background())
		quote := snapshot.Quote(symbol)
		msg := fmt.Sprintf(
			"%s\nPrice: $%.2f\n24h Change: %+.2f%%\n24h Volume: $%.0f",
			symbol, quote.PriceUSD, quote.Change24hPct, quote.Volume24hUSD,
		)
		if !snapshot.IsRealData {
			msg += "\n(fallback data, all sources down)"
		}
		return c.Send(msg)
	})

	b.Handle("/market", func(c tele.Context) error {
		snapshot := marketService.GetMarketData(context.Background())
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Fear & Greed: %d (%s)\n",
			snapshot.Sentiment.FearGreedIndex, snapshot.Sentiment.FearGreedClassification))
		sb.WriteString(fmt.Sprintf("BTC Dominance: %.1f%%\n", snapshot.Sentiment.BTCDominancePct))
		sb.WriteString(fmt.Sprintf("Total Market Cap: $%.0f\n\n", snapshot.Sentiment.TotalMarketCapUSD))
		for _, symbol := range domain.SupportedSymbols {
			quote := snapshot.Quote(symbol)
			sb.WriteString(fmt.Sprintf("%s: $%.2f (%+.2f%%)\n", symbol, quote.PriceUSD, quote.Change24hPct))
		}
		if !snapshot.IsRealData {
			sb.WriteString("\n(fallback data, all sources down)")
		}
		return c.Send(sb.String())
	})

	b.Handle("/reco", func(c tele.Context) error {
		profile := domain.ProfileModerate
		if args := c.Args(); len(args) > 0 {
			profile = domain.ParseRiskProfile(strings.ToUpper(args[0]))
		}
		recs := marketService.Recommendations(context.Background(), profile)
		return c.Send(advisor.TemplatedReply(recs))
	})

	b.Handle("/ask", func(c tele.Context) error {
		question := strings.TrimSpace(strings.Join(c.Args(), " "))
		if question == "" {
			return c.Send("Usage: /ask should I buy ETH now?")
		}
		reply, err := advisorService.Ask(context.Background(), c.Chat().ID, question)
		if err != nil {
			return c.Send(fmt.Sprintf("Advisor error: %v", err))
		}
		return c.Send(reply)
	})

	log.Println("Telegram bot started")
	go b.Start()
}

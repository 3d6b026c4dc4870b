package janus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roomgw",
		Subsystem: "janus",
		Name:      "messages_received_total",
		Help:      "Inbound gateway frames by janus type.",
	}, []string{"type"})

	transactionsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roomgw",
		Subsystem: "janus",
		Name:      "transactions_opened_total",
		Help:      "Transactions opened towards the gateway.",
	})

	transactionsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roomgw",
		Subsystem: "janus",
		Name:      "transactions_closed_total",
		Help:      "Transactions resolved, by outcome.",
	}, []string{"outcome"})
)

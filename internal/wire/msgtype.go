package wire

import "strconv"

// MessageType is the numeric message code carried by every envelope.
// Values are part of the wire contract and must not be renumbered.
type MessageType uint16

const (
	OK                 MessageType = 0
	SendOrder          MessageType = 1
	AvgPrice           MessageType = 2
	PosOpenPL          MessageType = 3
	PosClosedPL        MessageType = 4
	PosLongPendShares  MessageType = 5
	PosShortPendShares MessageType = 6
	LRPBid             MessageType = 7
	LRPAsk             MessageType = 8
	PosTotShares       MessageType = 9
	LastTrade          MessageType = 10
	LastSize           MessageType = 11
	NDayHigh           MessageType = 12
	NDayLow            MessageType = 13
	IntradayHigh       MessageType = 14
	IntradayLow        MessageType = 15
	OpenPrice          MessageType = 16
	ClosePrice         MessageType = 17
	NLastTrade         MessageType = 20
	NBidSize           MessageType = 21
	NAskSize           MessageType = 22
	NBid               MessageType = 23
	NAsk               MessageType = 24
	IsSimulation       MessageType = 25
	GetSize            MessageType = 26
	YestClose          MessageType = 27
	BrokerName         MessageType = 28
	TickNotify         MessageType = 100
	ExecuteNotify      MessageType = 101
	RegisterClient     MessageType = 102
	RegisterStock      MessageType = 103
	ClearStocks        MessageType = 104
	ClearClient        MessageType = 105
	Heartbeat          MessageType = 106
	OrderNotify        MessageType = 107
	Info               MessageType = 108
	QuoteNotify        MessageType = 109
	TradeNotify        MessageType = 110
	RegisterIndex      MessageType = 111
	DayRange           MessageType = 112
	GotNullOrder       MessageType = 996
	UnknownMsg         MessageType = 997
	UnknownSym         MessageType = 998
	ConnectorMissing   MessageType = 999
)

var messageTypeNames = map[MessageType]string{
	OK:                 "OK",
	SendOrder:          "SENDORDER",
	AvgPrice:           "AVGPRICE",
	PosOpenPL:          "POSOPENPL",
	PosClosedPL:        "POSCLOSEDPL",
	PosLongPendShares:  "POSLONGPENDSHARES",
	PosShortPendShares: "POSSHORTPENDSHARES",
	LRPBid:             "LRPBID",
	LRPAsk:             "LRPASK",
	PosTotShares:       "POSTOTSHARES",
	LastTrade:          "LASTTRADE",
	LastSize:           "LASTSIZE",
	NDayHigh:           "NDAYHIGH",
	NDayLow:            "NDAYLOW",
	IntradayHigh:       "INTRADAYHIGH",
	IntradayLow:        "INTRADAYLOW",
	OpenPrice:          "OPENPRICE",
	ClosePrice:         "CLOSEPRICE",
	NLastTrade:         "NLASTTRADE",
	NBidSize:           "NBIDSIZE",
	NAskSize:           "NASKSIZE",
	NBid:               "NBID",
	NAsk:               "NASK",
	IsSimulation:       "ISSIMULATION",
	GetSize:            "GETSIZE",
	YestClose:          "YESTCLOSE",
	BrokerName:         "BROKERNAME",
	TickNotify:         "TICKNOTIFY",
	ExecuteNotify:      "EXECUTENOTIFY",
	RegisterClient:     "REGISTERCLIENT",
	RegisterStock:      "REGISTERSTOCK",
	ClearStocks:        "CLEARSTOCKS",
	ClearClient:        "CLEARCLIENT",
	Heartbeat:          "HEARTBEAT",
	OrderNotify:        "ORDERNOTIFY",
	Info:               "INFO",
	QuoteNotify:        "QUOTENOTIFY",
	TradeNotify:        "TRADENOTIFY",
	RegisterIndex:      "REGISTERINDEX",
	DayRange:           "DAYRANGE",
	GotNullOrder:       "GOTNULLORDER",
	UnknownMsg:         "UNKNOWNMSG",
	UnknownSym:         "UNKNOWNSYM",
	ConnectorMissing:   "TL_CONNECTOR_MISSING",
}

func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return "MessageType(" + strconv.Itoa(int(t)) + ")"
}

// Known reports whether t is a defined message code.
func (t MessageType) Known() bool {
	_, ok := messageTypeNames[t]
	return ok
}

// Envelope is one message in flight. It is built per send or receive and
// never retained.
type Envelope struct {
	Type    MessageType
	Payload string
	Source  string
	Dest    string
}

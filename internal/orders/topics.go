package orders

import "strconv"

// TopicOrderEvents carries every order event; consumers switch on Envelope.EventType.
const TopicOrderEvents = "storefront.order.events"

// Partition key = order id, so events of one order keep their order.
func PartitionKey(orderID int64) []byte { return []byte(PartitionKeyString(orderID)) }

func PartitionKeyString(orderID int64) string { return strconv.FormatInt(orderID, 10) }

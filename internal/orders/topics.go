package orders

import "strconv"

const (
	TopicOrderPlaced = "orders.placed"
	TopicStockLow    = "inventory.stock.low"
)

// Partition key = order id, so all events for one order keep their order.
func PartitionKey(orderID int64) []byte {
	return []byte(strconv.FormatInt(orderID, 10))
}

// ProductKey partitions stock events by product instead.
func ProductKey(productID int64) []byte {
	return []byte(strconv.FormatInt(productID, 10))
}

package autorelease

import "errors"

var ErrNoOrders = errors.New("no orders")

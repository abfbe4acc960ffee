// @title                       Event Booking API
// @version                     1.0
// @description                 Register, log in, browse events and book a seat.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import "github.com/bookly/event-booking/cmd/server/cmd"

func main() {
	cmd.Execute()
}

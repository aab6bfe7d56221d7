package store

// DriverName returns the database/sql driver name Open uses.
func DriverName() string {
	return driverName
}

// DriverPackage returns the import path of the compiled-in driver.
func DriverPackage() string {
	return driverPackage
}

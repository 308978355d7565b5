//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

// contentflow serves the content-production workflow over HTTP.
package main

func main() {
	Execute()
}

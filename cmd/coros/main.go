// Licensed to coros under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. coros licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"
)

const linkedVersion = "0.1.0"

const logo = `
 ██████╗ ██████╗ ██████╗  ██████╗ ███████╗
██╔════╝██╔═══██╗██╔══██╗██╔═══██╗██╔════╝
██║     ██║   ██║██████╔╝██║   ██║███████╗
██║     ██║   ██║██╔══██╗██║   ██║╚════██║
╚██████╗╚██████╔╝██║  ██║╚██████╔╝███████║
 ╚═════╝ ╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚══════╝
`

// coros command of the cli
var coros = &cobra.Command{
	Use:   "coros",
	Short: "coros benchmarks a suspension-based mutex against a blocking one",
}

// versionCmd prints the version of coros
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of coros",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("coros: %s\n", linkedVersion)
	},
}

func init() {
	coros.AddCommand(
		versionCmd,
		newBenchmarkCmd(),
	)
	coros.Long = logo
}

func main() {
	if err := coros.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

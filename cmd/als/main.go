// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/bootstrap"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, i18n.NewError(context.Background(), msgs.MsgConfigBootstrapArgs, os.Args[0]))
		os.Exit(int(bootstrap.RC_FAIL))
	}
	os.Exit(int(bootstrap.Run(os.Args[1])))
}
